// pattern: Imperative Shell

package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"logictree/internal/events"
	"logictree/internal/layout"
	"logictree/internal/logging"
	"logictree/internal/session"
)

// Server exposes a session over HTTP.
type Server struct {
	httpServer *http.Server
	session    *session.Session
	logger     *logging.ScopedLogger
	addr       string
	listener   net.Listener
	events     *eventBroker
	journal    *logging.Journal

	layoutMu   sync.RWMutex
	layoutOpts layout.Options
}

// Config holds web server configuration.
type Config struct {
	Bind   string
	Port   int
	Layout layout.Options
}

// New creates a web server for sess.
// logProvider may be a *logging.Manager or a *logging.TestLogManager.
// journal is optional; without it /api/logs returns an empty list.
func New(cfg Config, sess *session.Session, logProvider logging.LoggerProvider, journal *logging.Journal) *Server {
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		session:    sess,
		logger:     logProvider.For("web"),
		addr:       addr,
		events:     newEventBroker(),
		journal:    journal,
		layoutOpts: cfg.Layout,
	}
	sess.OnChange(func(ev events.TreeChanged) { s.events.Notify(ev) })

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /api/logs", s.handleLogs)
	mux.HandleFunc("GET /api/tree", s.handleGetTree)
	mux.HandleFunc("POST /api/tree", s.handleStartTree)
	mux.HandleFunc("DELETE /api/tree", s.handleResetTree)
	mux.HandleFunc("GET /api/layout", s.handleGetLayout)
	mux.HandleFunc("POST /api/nodes/{id}/children", s.handleAddChild)
	mux.HandleFunc("PUT /api/nodes/{id}", s.handleUpdateContent)
	mux.HandleFunc("DELETE /api/nodes/{parent}/children/{id}", s.handleDeleteChild)

	return s
}

// Handler returns the server's HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// SetLayoutOptions replaces the options used for subsequent layouts.
func (s *Server) SetLayoutOptions(opts layout.Options) {
	s.layoutMu.Lock()
	s.layoutOpts = opts
	s.layoutMu.Unlock()
	s.logger.Info("layout options updated",
		"canvas_width", opts.CanvasWidth,
		"max_node_width", opts.MaxNodeWidth,
		"share_base", opts.ShareBase,
		"wrap_columns", opts.WrapColumns,
	)
	s.events.Notify(events.TreeChanged{Kind: events.ChangeLayout})
}

func (s *Server) layoutOptions() layout.Options {
	s.layoutMu.RLock()
	defer s.layoutMu.RUnlock()
	return s.layoutOpts
}

// Listen binds the configured address. Call Serve with the returned
// listener; splitting the two lets callers learn an ephemeral port first.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("web server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on ln until the server stops.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("web server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Addr returns the bound address after Listen, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully stops the server and ends open streams.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	s.events.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
