package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meur/civatlas/internal/models"
	"github.com/meur/civatlas/internal/session"
	"github.com/meur/civatlas/internal/viewsync"
	"go.uber.org/zap"
)

// sessionResponse is returned when a session is created or fetched
type sessionResponse struct {
	ID   string        `json:"id"`
	View viewsync.View `json:"view"`
}

// handleCreateSession starts a session on the requested category. Unknown
// or missing categories fall back to the default one.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" {
		req.Category = r.URL.Query().Get("category")
	}

	sess, loaded := s.sessions.Create(models.ResolveCategory(req.Category))
	select {
	case <-loaded:
	case <-r.Context().Done():
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, View: sess.View()})
}

// handleGetSession returns the current view of a session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, View: sess.View()})
}

// handleDeleteSession ends a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleSwitchCategory switches the active category and waits for its dataset
func (s *Server) handleSwitchCategory(w http.ResponseWriter, r *http.Request) {
	s.handleIntent(w, r, session.IntentCategory)
}

// handleReload reloads the active category
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.handleIntent(w, r, session.IntentReload)
}

// handleSearch replaces the search text
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.handleIntent(w, r, session.IntentSearch)
}

// handleSort selects a sort option
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	s.handleIntent(w, r, session.IntentSort)
}

// handleClick forwards a click from the list, map or tray
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	s.handleIntent(w, r, session.IntentClick)
}

// handleCloseDetail closes the detail panel
func (s *Server) handleCloseDetail(w http.ResponseWriter, r *http.Request) {
	s.handleIntent(w, r, session.IntentClose)
}

// handleBestMarker returns the wrapped marker copy nearest to ?center=<lng>
func (s *Server) handleBestMarker(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	center := 0.0
	if raw := r.URL.Query().Get("center"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid center longitude")
			return
		}
		center = v
	}

	marker, ok := sess.Orchestrator().BestMarker(chi.URLParam(r, "entityID"), center)
	if !ok {
		respondError(w, http.StatusNotFound, "Marker not found")
		return
	}
	respondJSON(w, http.StatusOK, marker)
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "Session not found")
	}
	return sess, ok
}

// handleIntent decodes an optional intent body, applies it and responds
// with the resulting view.
func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request, kind string) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var in session.Intent
	if err := decodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Type = kind

	done, err := sess.Apply(in)
	if err != nil {
		status, msg := intentError(err)
		if status == http.StatusInternalServerError {
			s.log.Error("apply intent", zap.String("type", kind), zap.Error(err))
		}
		respondError(w, status, msg)
		return
	}
	select {
	case <-done:
	case <-r.Context().Done():
		return
	}

	respondJSON(w, http.StatusOK, sess.View())
}

func intentError(err error) (int, string) {
	switch {
	case errors.Is(err, viewsync.ErrUnknownEntity):
		return http.StatusNotFound, "Entity not found"
	case errors.Is(err, viewsync.ErrNoDataset):
		return http.StatusConflict, "No dataset loaded"
	case errors.Is(err, session.ErrUnknownIntent):
		return http.StatusBadRequest, "Unknown intent"
	}
	return http.StatusInternalServerError, "Failed to apply intent"
}
