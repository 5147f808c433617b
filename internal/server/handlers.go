package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/flowchart/pkg/buildinfo"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	pkgio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/pipeline"
)

// layoutRequest is the body of /v1/arrange and /v1/route.
type layoutRequest struct {
	Nodes   []pkgio.Node     `json:"nodes"`
	Options pipeline.Options `json:"options"`
}

// decodeRequest reads the body over the server's default options, so fields
// the client leaves out keep their configured values.
func (s *Server) decodeRequest(r *http.Request, w http.ResponseWriter) (*flow.Graph, pipeline.Options, error) {
	req := layoutRequest{Options: s.defaults()}
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if err == io.EOF {
			return nil, pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		}
		if errors.GetCode(err) != "" {
			return nil, pipeline.Options{}, err
		}
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid JSON")
	}
	g, err := pkgio.BuildGraph(req.Nodes)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	req.Options.Logger = loggerFrom(r.Context(), s.logger)
	return g, req.Options, nil
}

// POST /v1/arrange
func (s *Server) arrange(w http.ResponseWriter, r *http.Request) {
	g, opts, err := s.decodeRequest(r, w)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), g, opts)
	if err != nil {
		loggerFrom(r.Context(), s.logger).Warn("arrange failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

// POST /v1/route
func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	g, opts, err := s.decodeRequest(r, w)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.runner.Route(r.Context(), g, opts)
	if err != nil {
		loggerFrom(r.Context(), s.logger).Warn("route failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

// GET /healthz
func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}
