// Package server exposes the layout pipeline over HTTP and websockets.
//
// # Routes
//
//	POST /v1/arrange   arrange + route a node list
//	POST /v1/route     re-route a node list at its current positions
//	GET  /v1/live      websocket session for interactive editing
//	GET  /healthz      liveness and build info
//	GET  /metrics      Prometheus metrics
//
// Every response carries an X-Request-ID header; the same id is attached to
// the request's log lines.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/flowchart/pkg/pipeline"
)

// DefaultMaxBodyBytes caps request bodies and websocket messages.
const DefaultMaxBodyBytes = 4 << 20

// Options configures a Server.
type Options struct {
	// Logger receives request and session logs. Defaults to a discard logger.
	Logger *log.Logger

	// Defaults returns the base pipeline options for each request. Request
	// bodies override individual fields. Nil means the pipeline defaults.
	Defaults func() pipeline.Options

	// AllowedOrigins lists the Origin values accepted by /v1/live. Empty
	// allows same-origin requests only.
	AllowedOrigins []string

	// MaxBodyBytes caps request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Metrics, when set, tracks open live sessions.
	Metrics *Metrics
}

// Server holds HTTP handler dependencies.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults func() pipeline.Options
	maxBody  int64
	metrics  *Metrics
	upgrader websocket.Upgrader
	router   chi.Router

	mu       sync.Mutex
	sessions map[*session]struct{}
}

// New creates a server and registers all routes.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Defaults == nil {
		opts.Defaults = func() pipeline.Options { return pipeline.Options{} }
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		runner:   runner,
		logger:   opts.Logger,
		defaults: opts.Defaults,
		maxBody:  opts.MaxBodyBytes,
		metrics:  opts.Metrics,
		sessions: make(map[*session]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin(opts.AllowedOrigins),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.instrument)

	r.Post("/v1/arrange", s.arrange)
	r.Post("/v1/route", s.route)
	r.Get("/v1/live", s.live)
	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.closeSessions()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess] = struct{}{}
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess)
}

// closeSessions closes hijacked websocket connections, which
// http.Server.Shutdown does not track.
func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sess := range s.sessions {
		sess.close()
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil // gorilla default: same origin only
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}
