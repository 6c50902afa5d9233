package instance

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

func recordingServer(t *testing.T, status int, reply string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var got []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		got = append(got, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestClient_Routes(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *Client) ([]byte, error)
		wantMethod string
		wantPath   string
		wantQuery  string
		wantBody   map[string]any
	}{
		{"start", func(c *Client) ([]byte, error) { return c.Start("why?") }, "POST", "/api/tree", "", map[string]any{"content": "why?"}},
		{"reset", func(c *Client) ([]byte, error) { return c.Reset() }, "DELETE", "/api/tree", "", nil},
		{"tree", func(c *Client) ([]byte, error) { return c.Tree() }, "GET", "/api/tree", "", nil},
		{"layout", func(c *Client) ([]byte, error) { return c.Layout() }, "GET", "/api/layout", "", nil},
		{"add", func(c *Client) ([]byte, error) { return c.AddChild("root", 3) }, "POST", "/api/nodes/root/children", "", map[string]any{"base_version": float64(3)}},
		{"update", func(c *Client) ([]byte, error) { return c.UpdateContent("a b", "leads", 0) }, "PUT", "/api/nodes/a%20b", "", map[string]any{"content": "leads", "base_version": float64(0)}},
		{"delete", func(c *Client) ([]byte, error) { return c.DeleteChild("root", "a", 0) }, "DELETE", "/api/nodes/root/children/a", "", nil},
		{"delete with base", func(c *Client) ([]byte, error) { return c.DeleteChild("root", "a", 7) }, "DELETE", "/api/nodes/root/children/a", "base_version=7", nil},
		{"logs", func(c *Client) ([]byte, error) { return c.Logs("session", 5) }, "GET", "/api/logs", "limit=5&scope=session", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := recordingServer(t, http.StatusOK, `{"ok":true}`)

			body, err := tt.call(NewClient(srv.URL))
			if err != nil {
				t.Fatalf("call error: %v", err)
			}
			if string(body) != `{"ok":true}` {
				t.Errorf("body = %q", string(body))
			}
			if len(*got) != 1 {
				t.Fatalf("server saw %d requests, want 1", len(*got))
			}
			req := (*got)[0]
			if req.Method != tt.wantMethod || req.Path != tt.wantPath || req.Query != tt.wantQuery {
				t.Errorf("request = %s %s?%s, want %s %s?%s", req.Method, req.Path, req.Query, tt.wantMethod, tt.wantPath, tt.wantQuery)
			}
			if len(req.Body) != len(tt.wantBody) {
				t.Fatalf("body = %v, want %v", req.Body, tt.wantBody)
			}
			for k, v := range tt.wantBody {
				if req.Body[k] != v {
					t.Errorf("body[%q] = %v, want %v", k, req.Body[k], v)
				}
			}
		})
	}
}

func TestClient_ServerError(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusConflict, `{"error":"session not started"}`)

	_, err := NewClient(srv.URL).Tree()
	if err == nil {
		t.Fatal("Tree() should fail on 409")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error %T is not a *StatusError", err)
	}
	if statusErr.Code != http.StatusConflict || statusErr.Message != "session not started" {
		t.Errorf("StatusError = %+v", statusErr)
	}
}

func TestClient_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Layout()
	if err == nil || err.Error() != "logictree returned status 500: internal error" {
		t.Fatalf("Layout() error = %v", err)
	}
}
