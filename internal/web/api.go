// pattern: Imperative Shell

package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"logictree/internal/layout"
	"logictree/internal/logging"
	"logictree/internal/session"
	"logictree/internal/tree"
)

// TreeResponse is the JSON representation of a session snapshot.
type TreeResponse struct {
	Version uint64     `json:"version"`
	State   string     `json:"state"`
	Root    *tree.Node `json:"root"`
}

// AddChildResponse is returned after a child is created. ID is empty when
// the parent was unknown and the edit was ignored.
type AddChildResponse struct {
	ID tree.ID `json:"id"`
	TreeResponse
}

// LayoutResponse is the layout of the tree at Version.
type LayoutResponse struct {
	Version uint64        `json:"version"`
	Layout  layout.Result `json:"layout"`
}

// StartRequest is the JSON body for starting a session.
type StartRequest struct {
	Content string `json:"content"`
}

// EditRequest carries the optimistic base version of an edit. Zero means
// "apply to whatever is current".
type EditRequest struct {
	BaseVersion uint64 `json:"base_version"`
}

// UpdateContentRequest is the JSON body for renaming a node.
type UpdateContentRequest struct {
	Content     *string `json:"content"`
	BaseVersion uint64  `json:"base_version"`
}

func snapshotResponse(snap session.Snapshot) TreeResponse {
	return TreeResponse{Version: snap.Version, State: session.Started.String(), Root: snap.Root}
}

// handleGetTree handles GET /api/tree.
func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Snapshot()
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse(snap))
}

// handleStartTree handles POST /api/tree. Starting an already started
// session replaces its tree.
func (s *Server) handleStartTree(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusCreated, snapshotResponse(s.session.Start(req.Content)))
}

// handleResetTree handles DELETE /api/tree.
func (s *Server) handleResetTree(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"state": session.NotStarted.String()})
}

// handleGetLayout handles GET /api/layout.
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Snapshot()
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		Version: snap.Version,
		Layout:  layout.Compute(snap.Root, s.layoutOptions()),
	})
}

// handleAddChild handles POST /api/nodes/{id}/children. The body is optional.
func (s *Server) handleAddChild(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := decodeOptional(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	snap, id, err := s.session.AddChild(req.BaseVersion, tree.ID(r.PathValue("id")))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	status := http.StatusCreated
	if id == "" {
		status = http.StatusOK
	}
	writeJSON(w, status, AddChildResponse{ID: id, TreeResponse: snapshotResponse(snap)})
}

// handleUpdateContent handles PUT /api/nodes/{id}. Content is required but
// may be the empty string.
func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var req UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == nil {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	snap, err := s.session.UpdateContent(req.BaseVersion, tree.ID(r.PathValue("id")), *req.Content)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse(snap))
}

// handleDeleteChild handles DELETE /api/nodes/{parent}/children/{id}.
// The optional base_version query parameter enables the version check.
func (s *Server) handleDeleteChild(w http.ResponseWriter, r *http.Request) {
	var base uint64
	if v := r.URL.Query().Get("base_version"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "base_version must be a non-negative integer")
			return
		}
		base = parsed
	}

	snap, err := s.session.DeleteChild(base, tree.ID(r.PathValue("id")), tree.ID(r.PathValue("parent")))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse(snap))
}

// handleLogs handles GET /api/logs?scope=&limit=.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries := []logging.LogEntry{}
	if s.journal != nil {
		entries = s.journal.Recent(r.URL.Query().Get("scope"), limit)
	}
	writeJSON(w, http.StatusOK, entries)
}

// writeSessionError maps session errors onto HTTP statuses.
func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotStarted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrVersionConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNodeNotFound), errors.Is(err, session.ErrNotAChild):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("session operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeOptional decodes a JSON body, treating an empty body as zero values.
func decodeOptional(body io.Reader, v any) error {
	err := json.NewDecoder(body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
