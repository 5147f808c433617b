package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/flowchart/pkg/errors"
	pkgio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/pipeline"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeCyclicGraph:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidNodeID,
		errors.ErrCodeDuplicateNode,
		errors.ErrCodeInvalidSpacing,
		errors.ErrCodeInvalidDirection,
		errors.ErrCodeInvalidStrategy,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidConfig,
		errors.ErrCodeUnknownAnchor:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// resultResponse is the body returned for a pipeline result.
type resultResponse struct {
	pkgio.Output
	CacheHit bool      `json:"cache_hit"`
	Stats    statsBody `json:"stats"`
}

type statsBody struct {
	Nodes     int     `json:"nodes"`
	Edges     int     `json:"edges"`
	Dangling  int     `json:"dangling"`
	ArrangeMs float64 `json:"arrange_ms"`
	RouteMs   float64 `json:"route_ms"`
}

func newResultResponse(res *pipeline.Result) resultResponse {
	return resultResponse{
		Output:   pkgio.NewOutput(res),
		CacheHit: res.CacheHit,
		Stats: statsBody{
			Nodes:     res.Stats.NodeCount,
			Edges:     res.Stats.EdgeCount,
			Dangling:  res.Stats.DanglingDeps,
			ArrangeMs: float64(res.Stats.ArrangeTime.Microseconds()) / 1000,
			RouteMs:   float64(res.Stats.RouteTime.Microseconds()) / 1000,
		},
	}
}
