package cache

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey returns the key for an arrange + route result.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// RouteKey returns the key for routing a fixed set of positions.
	RouteKey(positionsHash string, opts RouteKeyOpts) string
}

// LayoutKeyOpts holds every option that changes an arrange result.
type LayoutKeyOpts struct {
	Direction string       `json:"direction"`
	AxisGap   float64      `json:"axis_gap"`
	CrossGap  float64      `json:"cross_gap"`
	GroupGap  float64      `json:"group_gap"`
	Route     RouteKeyOpts `json:"route"`
}

// RouteKeyOpts holds every option that changes a route result.
type RouteKeyOpts struct {
	Direction   string  `json:"direction"`
	Strategy    string  `json:"strategy"`
	ArrowInset  float64 `json:"arrow_inset"`
	StrokeWidth float64 `json:"stroke_width"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// RouteKey implements Keyer.
func (DefaultKeyer) RouteKey(positionsHash string, opts RouteKeyOpts) string {
	return hashKey("route", positionsHash, opts)
}
