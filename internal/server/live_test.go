package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/geom"
)

type liveClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialLive(t *testing.T) *liveClient {
	t.Helper()
	srv := httptest.NewServer(newTestServer(Options{}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &liveClient{t: t, conn: conn}
}

func (c *liveClient) send(msg string) liveReply {
	c.t.Helper()
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		c.t.Fatalf("write: %v", err)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply liveReply
	if err := c.conn.ReadJSON(&reply); err != nil {
		c.t.Fatalf("read: %v", err)
	}
	return reply
}

func TestLiveSession(t *testing.T) {
	c := dialLive(t)

	reply := c.send(`{"type": "move", "id": "a", "x": 1, "y": 1}`)
	if reply.Type != msgError || reply.Error.Code != string(errors.ErrCodeInvalidInput) {
		t.Fatalf("move before load = %+v", reply)
	}

	reply = c.send(`{"type": "load", "nodes": [{"id": "a"}, {"id": "b", "deps": ["a"]}], "options": {"direction": "vertical"}}`)
	if reply.Type != msgResult || reply.Seq != 2 {
		t.Fatalf("load reply = %+v", reply)
	}
	if n := reply.Result.Nodes[1]; n.X != 0 || n.Y != 200 {
		t.Errorf("b at (%v,%v), want (0,200)", n.X, n.Y)
	}
	if a := reply.Result.Arrows[0]; a.SourceAnchor != geom.Bottom || a.TargetAnchor != geom.Top {
		t.Errorf("load anchors %v/%v, want bottom/top", a.SourceAnchor, a.TargetAnchor)
	}

	// Drag b beside a: the arrow switches to the side anchors.
	reply = c.send(`{"type": "move", "id": "b", "x": 500, "y": 0}`)
	if reply.Type != msgResult {
		t.Fatalf("move reply = %+v", reply)
	}
	if n := reply.Result.Nodes[1]; n.X != 500 || n.Y != 0 {
		t.Errorf("b at (%v,%v), want (500,0)", n.X, n.Y)
	}
	if a := reply.Result.Arrows[0]; a.SourceAnchor != geom.Right || a.TargetAnchor != geom.Left {
		t.Errorf("move anchors %v/%v, want right/left", a.SourceAnchor, a.TargetAnchor)
	}

	reply = c.send(`{"type": "move", "id": "ghost", "x": 0, "y": 0}`)
	if reply.Type != msgError || reply.Error.Code != string(errors.ErrCodeNotFound) {
		t.Errorf("move ghost = %+v", reply)
	}

	reply = c.send(`{"type": "arrange"}`)
	if reply.Type != msgResult {
		t.Fatalf("arrange reply = %+v", reply)
	}
	if n := reply.Result.Nodes[1]; n.X != 0 || n.Y != 200 {
		t.Errorf("after arrange b at (%v,%v), want (0,200)", n.X, n.Y)
	}
	if reply.Seq != 5 {
		t.Errorf("seq = %d, want 5", reply.Seq)
	}
}

func TestLiveRejectsBadMessages(t *testing.T) {
	c := dialLive(t)
	tests := []struct {
		msg  string
		code errors.Code
	}{
		{`not json`, errors.ErrCodeInvalidFormat},
		{`{"type": "explode"}`, errors.ErrCodeInvalidInput},
		{`{"type": "load", "nodes": [{"id": "a", "deps": ["a"]}]}`, errors.ErrCodeCyclicGraph},
		{`{"type": "load", "nodes": [], "options": {"strategy": "zigzag"}}`, errors.ErrCodeInvalidStrategy},
	}
	for _, tt := range tests {
		reply := c.send(tt.msg)
		if reply.Type != msgError || reply.Error == nil || reply.Error.Code != string(tt.code) {
			t.Errorf("send(%s) = %+v, want %s", tt.msg, reply, tt.code)
		}
	}
}
