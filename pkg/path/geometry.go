package path

import (
	"strconv"
	"strings"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/geom"
)

// Op is an SVG path command letter.
type Op byte

// Supported path commands.
const (
	MoveTo  Op = 'M'
	LineTo  Op = 'L'
	CurveTo Op = 'C'
)

// arity returns the number of points an op takes.
func (o Op) arity() int {
	switch o {
	case MoveTo, LineTo:
		return 1
	case CurveTo:
		return 3
	}
	return 0
}

// Command is a single path command with its points.
type Command struct {
	Op     Op
	Points []geom.Point
}

// Geometry is an ordered list of path commands.
type Geometry []Command

// Move returns an M command.
func Move(p geom.Point) Command { return Command{Op: MoveTo, Points: []geom.Point{p}} }

// Line returns an L command.
func Line(p geom.Point) Command { return Command{Op: LineTo, Points: []geom.Point{p}} }

// Curve returns a C command with two control points and an end point.
func Curve(cp1, cp2, end geom.Point) Command {
	return Command{Op: CurveTo, Points: []geom.Point{cp1, cp2, end}}
}

// String renders the geometry as an SVG "d" attribute.
func (g Geometry) String() string {
	var b strings.Builder
	for i, c := range g {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(byte(c.Op))
		for j, p := range c.Points {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(formatNum(p.X))
			b.WriteByte(' ')
			b.WriteString(formatNum(p.Y))
		}
	}
	return b.String()
}

// Start returns the target of the leading M command.
func (g Geometry) Start() (geom.Point, bool) {
	if len(g) == 0 || g[0].Op != MoveTo || len(g[0].Points) == 0 {
		return geom.Point{}, false
	}
	return g[0].Points[0], true
}

// End returns the last point of the last command.
func (g Geometry) End() (geom.Point, bool) {
	if len(g) == 0 {
		return geom.Point{}, false
	}
	pts := g[len(g)-1].Points
	if len(pts) == 0 {
		return geom.Point{}, false
	}
	return pts[len(pts)-1], true
}

// MarshalText implements encoding.TextMarshaler using the "d" syntax.
func (g Geometry) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Geometry) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Parse reads a "d" attribute produced by Geometry.String.
// Only absolute M, L and C commands are accepted.
func Parse(d string) (Geometry, error) {
	var g Geometry
	fields := strings.Fields(d)
	for i := 0; i < len(fields); {
		tok := fields[i]
		op := Op(tok[0])
		n := op.arity()
		if n == 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported path command %q", tok[:1])
		}
		// The op letter is glued to the first number.
		nums := append([]string{tok[1:]}, fields[i+1:min(len(fields), i+2*n)]...)
		if len(nums) != 2*n || nums[0] == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "path command %c needs %d coordinates", op, 2*n)
		}
		cmd := Command{Op: op, Points: make([]geom.Point, n)}
		for k := 0; k < n; k++ {
			x, err := strconv.ParseFloat(nums[2*k], 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "path coordinate %q", nums[2*k])
			}
			y, err := strconv.ParseFloat(nums[2*k+1], 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "path coordinate %q", nums[2*k+1])
			}
			cmd.Points[k] = geom.Point{X: x, Y: y}
		}
		g = append(g, cmd)
		i += 2 * n
	}
	return g, nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
