package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
	pkgio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/observability"
	"github.com/matzehuels/flowchart/pkg/pipeline"
	"github.com/matzehuels/flowchart/pkg/route"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Live message types.
const (
	msgLoad    = "load"
	msgMove    = "move"
	msgArrange = "arrange"
	msgResult  = "result"
	msgError   = "error"
)

// liveMessage is a client → server message.
type liveMessage struct {
	Type    string          `json:"type"`
	Nodes   []pkgio.Node    `json:"nodes,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`
	ID      string          `json:"id,omitempty"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
}

// liveReply is a server → client message. Seq counts replies per session.
type liveReply struct {
	Type   string          `json:"type"`
	Seq    int             `json:"seq"`
	Result *resultResponse `json:"result,omitempty"`
	Error  *errorResponse  `json:"error,omitempty"`
}

// session is one websocket editing session. It owns a graph and a router;
// messages are handled one at a time.
type session struct {
	srv    *Server
	conn   *websocket.Conn
	logger *log.Logger

	mu     sync.Mutex
	graph  *flow.Graph
	opts   pipeline.Options
	router *route.Router
	seq    int

	closeOnce sync.Once
}

// GET /v1/live
func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), s.logger)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess := &session{srv: s, conn: conn, logger: logger}
	s.track(sess)
	if s.metrics != nil {
		s.metrics.SessionOpened()
		defer s.metrics.SessionClosed()
	}
	defer s.untrack(sess)
	defer sess.close()

	logger.Info("live session opened")
	sess.serve(r.Context())
	logger.Info("live session closed")
}

func (sess *session) close() {
	sess.closeOnce.Do(func() {
		_ = sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait))
		_ = sess.conn.Close()
	})
}

func (sess *session) serve(ctx context.Context) {
	conn := sess.conn
	conn.SetReadLimit(sess.srv.maxBody)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go sess.ping(done)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.logger.Warn("live read failed", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		reply := sess.handle(ctx, data)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			sess.logger.Warn("live write failed", "error", err)
			return
		}
	}
}

// ping keeps the connection alive. WriteControl may run concurrently with
// the reply writes in serve.
func (sess *session) ping(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (sess *session) handle(ctx context.Context, data []byte) liveReply {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.seq++

	res, err := sess.dispatch(ctx, data)
	if err != nil {
		sess.logger.Debug("live message rejected", "error", err)
		return liveReply{
			Type:  msgError,
			Seq:   sess.seq,
			Error: &errorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))},
		}
	}
	body := newResultResponse(res)
	return liveReply{Type: msgResult, Seq: sess.seq, Result: &body}
}

func (sess *session) dispatch(ctx context.Context, data []byte) (*pipeline.Result, error) {
	var msg liveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid JSON")
	}

	switch msg.Type {
	case msgLoad:
		return sess.load(ctx, msg)
	case msgArrange:
		if sess.graph == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no diagram loaded")
		}
		return sess.arrange(ctx)
	case msgMove:
		if sess.graph == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no diagram loaded")
		}
		return sess.move(ctx, msg)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
}

// load replaces the session diagram and arranges it.
func (sess *session) load(ctx context.Context, msg liveMessage) (*pipeline.Result, error) {
	opts := sess.srv.defaults()
	if len(msg.Options) > 0 {
		if err := json.Unmarshal(msg.Options, &opts); err != nil {
			if errors.GetCode(err) != "" {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid options")
		}
	}
	opts.Logger = sess.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g, err := pkgio.BuildGraph(msg.Nodes)
	if err != nil {
		return nil, err
	}

	// Commit only a diagram that arranged cleanly.
	res, err := sess.srv.runner.Execute(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	sess.graph = res.Graph
	sess.opts = opts
	sess.router = opts.NewRouter()
	return res, nil
}

func (sess *session) arrange(ctx context.Context) (*pipeline.Result, error) {
	res, err := sess.srv.runner.Execute(ctx, sess.graph, sess.opts)
	if err != nil {
		return nil, err
	}
	sess.graph = res.Graph
	sess.router.Reset()
	return res, nil
}

// move repositions one node and re-routes. Only pairs involving the moved
// node are recomputed.
func (sess *session) move(ctx context.Context, msg liveMessage) (*pipeline.Result, error) {
	if err := sess.graph.SetPosition(msg.ID, geom.Point{X: msg.X, Y: msg.Y}); err != nil {
		return nil, err
	}
	sess.router.Forget(msg.ID)

	start := time.Now()
	arrows, err := sess.router.Route(sess.graph)
	d := time.Since(start)
	observability.Layout().OnRouteComplete(ctx, sess.opts.Strategy, len(arrows), d, err)
	if err != nil {
		return nil, err
	}

	ix := sess.graph.Index()
	res := &pipeline.Result{
		Graph:     sess.graph.Clone(),
		Positions: sess.graph.Positions(),
		Arrows:    arrows,
		Visible:   sess.router.VisibleAnchors(),
		Dangling:  ix.Dangling(),
	}
	res.Stats.NodeCount = sess.graph.Len()
	res.Stats.EdgeCount = len(ix.Edges())
	res.Stats.DanglingDeps = len(res.Dangling)
	res.Stats.RouteTime = d
	return res, nil
}
