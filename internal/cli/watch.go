// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"logictree/internal/web"
)

// WatchConfig configures WatchTree.
type WatchConfig struct {
	BaseURL    string
	Styles     *Styles
	MaxContent int
	Writer     io.Writer
	ErrWriter  io.Writer
}

// WatchTree subscribes to the server's change stream and prints the tree
// on connect and after every change. It blocks until ctx is cancelled or
// the server goes away; both are clean exits and return nil.
func WatchTree(ctx context.Context, cfg WatchConfig) error {
	streamURL := "ws" + strings.TrimPrefix(cfg.BaseURL, "http") + "/api/stream"

	conn, _, err := websocket.Dial(ctx, streamURL, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to connect to %s: %w", streamURL, err)
	}
	defer func() { _ = conn.CloseNow() }()

	for {
		var frame web.StreamFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			switch {
			case ctx.Err() != nil:
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return nil
			case websocket.CloseStatus(err) == websocket.StatusGoingAway:
				fmt.Fprintln(cfg.ErrWriter, "Server stopped.")
				return nil
			case errors.Is(err, io.EOF):
				return nil
			default:
				return err
			}
		}
		fmt.Fprint(cfg.Writer, renderFrame(frame, cfg.Styles, cfg.MaxContent))
	}
}

// renderFrame formats one stream frame: a header naming the change, then
// the outline of the tree it produced.
func renderFrame(frame web.StreamFrame, styles *Styles, maxContent int) string {
	var b strings.Builder

	// The tree is read when the frame is sent, so its version is the one
	// that matches the outline below even if events arrive out of order.
	header := "connected"
	if c := frame.Change; c != nil {
		version := c.Version
		if frame.Tree != nil {
			version = frame.Tree.Version
		}
		header = fmt.Sprintf("v%d %s", version, c.Kind)
		if c.NodeID != "" {
			header += " " + c.NodeID
		}
		if c.Parent != "" {
			header += " under " + c.Parent
		}
	}
	b.WriteString(styles.accent("── " + header))
	b.WriteString("\n")

	if frame.Tree == nil {
		b.WriteString(RenderOutline(nil, styles, maxContent))
	} else {
		b.WriteString(RenderOutline(frame.Tree.Root, styles, maxContent))
	}
	return b.String()
}
