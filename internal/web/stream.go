// pattern: Imperative Shell

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"logictree/internal/events"
	"logictree/internal/layout"
	"logictree/internal/session"
)

const streamWriteTimeout = 5 * time.Second

// StreamFrame is pushed to websocket clients on connect and after every
// change. Tree and Layout are omitted while the session is not started.
type StreamFrame struct {
	Change *events.TreeChanged `json:"change,omitempty"`
	State  string              `json:"state"`
	Tree   *TreeResponse       `json:"tree,omitempty"`
	Layout *layout.Result      `json:"layout,omitempty"`
}

// handleStream upgrades to a websocket and pushes a StreamFrame per change.
// Client messages are ignored.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	// CloseRead discards client frames and cancels ctx once the peer goes away.
	ctx := conn.CloseRead(context.Background())

	s.logger.Info("stream connected", "remote", r.RemoteAddr)
	if err := s.writeFrame(ctx, conn, nil); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stream disconnected", "remote", r.RemoteAddr)
			return
		case ev, ok := <-ch:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := s.writeFrame(ctx, conn, &ev); err != nil {
				s.logger.Warn("stream write failed", "error", err)
				return
			}
		}
	}
}

// writeFrame sends the current state. The snapshot is read at send time, so
// a frame always reflects the latest tree even if events were coalesced.
func (s *Server) writeFrame(ctx context.Context, conn *websocket.Conn, change *events.TreeChanged) error {
	frame := StreamFrame{Change: change, State: session.NotStarted.String()}
	if snap, err := s.session.Snapshot(); err == nil {
		resp := snapshotResponse(snap)
		result := layout.Compute(snap.Root, s.layoutOptions())
		frame.State = resp.State
		frame.Tree = &resp
		frame.Layout = &result
	}

	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, frame)
}
