package web_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"logictree/internal/layout"
	"logictree/internal/logging"
	"logictree/internal/session"
	"logictree/internal/web"
)

// startTestServer runs a server on an ephemeral port and returns it with
// its base URL and session.
func startTestServer(t *testing.T, opts session.Options) (*web.Server, string, *session.Session) {
	t.Helper()

	lm := logging.NewTestLogManager(100)
	t.Cleanup(func() { _ = lm.Close() })

	sess := session.New(opts, lm)
	journal := logging.NewJournal(50)
	s := web.New(web.Config{Bind: "127.0.0.1", Port: 0, Layout: layout.DefaultOptions()}, sess, lm, journal)

	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ln)
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		<-done
	})

	return s, "http://" + s.Addr(), sess
}

func TestHandleHealth(t *testing.T) {
	_, baseURL, _ := startTestServer(t, session.Options{})

	resp, err := http.Get(baseURL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"status":"ok"}` {
		t.Errorf("body = %q", string(body))
	}
}

func TestAddr_BeforeListen(t *testing.T) {
	lm := logging.NewTestLogManager(10)
	defer func() { _ = lm.Close() }()

	s := web.New(web.Config{Bind: "127.0.0.1", Port: 8420}, session.New(session.Options{}, lm), lm, nil)
	if s.Addr() != "127.0.0.1:8420" {
		t.Errorf("Addr() = %q", s.Addr())
	}
}
