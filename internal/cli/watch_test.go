// pattern: Imperative Shell
package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"logictree/internal/events"
	"logictree/internal/tree"
	"logictree/internal/web"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForOutput(t *testing.T, buf *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("output never contained %q, got:\n%s", want, buf.String())
}

func TestWatchTree_PrintsEveryChange(t *testing.T) {
	client, sess := instanceClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	errOut := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- WatchTree(ctx, WatchConfig{
			BaseURL:   client.BaseURL(),
			Styles:    PlainStyles(),
			Writer:    out,
			ErrWriter: errOut,
		})
	}()

	waitForOutput(t, out, "── connected\n(not started)\n")

	sess.Start("Why?")
	waitForOutput(t, out, "── v1 started\nroot  Why?\n")

	_, id, _ := sess.AddChild(0, tree.RootID)
	waitForOutput(t, out, "── v2 child_added "+string(id)+" under root\n")
	waitForOutput(t, out, "└── "+string(id)+"  (empty)\n")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchTree() after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("WatchTree() did not return after cancel")
	}
}

func TestWatchTree_NoServer(t *testing.T) {
	err := WatchTree(context.Background(), WatchConfig{
		BaseURL:   "http://127.0.0.1:1",
		Styles:    PlainStyles(),
		Writer:    &bytes.Buffer{},
		ErrWriter: &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("WatchTree() should fail when nothing is listening")
	}
}

func TestRenderFrame_HeaderUsesTreeVersion(t *testing.T) {
	root := tree.Initialize("Why?")
	root = tree.AddChildWithID(root, tree.RootID, "a")
	root = tree.AddChildWithID(root, tree.RootID, "b")

	// A late child_added for v2 carrying the v3 tree.
	frame := web.StreamFrame{
		Change: &events.TreeChanged{Kind: events.ChangeAdded, Version: 2, NodeID: "a", Parent: string(tree.RootID)},
		State:  "started",
		Tree:   &web.TreeResponse{Version: 3, State: "started", Root: root},
	}

	got := renderFrame(frame, PlainStyles(), 0)
	if !strings.HasPrefix(got, "── v3 child_added a under root\n") {
		t.Errorf("header should carry the tree version, got:\n%s", got)
	}
	if !strings.Contains(got, "└── b  (empty)") {
		t.Errorf("outline missing b:\n%s", got)
	}
}

func TestRenderFrame_HeaderFallsBackToChangeVersion(t *testing.T) {
	frame := web.StreamFrame{
		Change: &events.TreeChanged{Kind: events.ChangeLayout, Version: 4},
		State:  "not started",
	}
	got := renderFrame(frame, PlainStyles(), 0)
	if !strings.HasPrefix(got, "── v4 layout_changed\n") {
		t.Errorf("got:\n%s", got)
	}
}
