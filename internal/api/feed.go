package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/dashboard"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
)

// FeedResponse is the rendered session: filters, visible videos, notice.
type FeedResponse struct {
	State  dashboard.State   `json:"state"`
	Videos []domain.Video    `json:"videos"`
	Notice *dashboard.Notice `json:"notice,omitempty"`
}

func (s *Server) controller(r *http.Request) *dashboard.Controller {
	return s.sessions.Get(Subject(r.Context()))
}

func (s *Server) writeFeed(w http.ResponseWriter, c *dashboard.Controller) {
	videos, notice := c.Feed()
	if videos == nil {
		videos = []domain.Video{}
	}
	writeJSON(w, http.StatusOK, FeedResponse{State: c.State(), Videos: videos, Notice: notice})
}

// writeResult renders the feed on success, or the error with the notice the
// controller recorded.
func (s *Server) writeResult(w http.ResponseWriter, c *dashboard.Controller, err error) {
	if err != nil {
		_, notice := c.Feed()
		s.writeNotice(w, err, notice)
		return
	}
	s.writeFeed(w, c)
}

// handleFeed returns the session feed, loading it on first access.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	c := s.controller(r)
	if r.URL.Query().Get("refresh") == "true" || c.State().Videos == nil {
		if err := c.Refresh(r.Context()); err != nil {
			// The previous list is kept; the notice travels with the feed.
			s.logger.Printf("feed refresh failed: %v", err)
		}
	}
	s.writeFeed(w, c)
}

func (s *Server) handlePatchSession(w http.ResponseWriter, r *http.Request) {
	var p dashboard.Patch
	if err := decodeJSON(w, r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	c := s.controller(r)
	s.writeResult(w, c, c.Apply(r.Context(), p))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	c := s.controller(r)
	s.writeResult(w, c, c.Refresh(r.Context()))
}

func (s *Server) handleMore(w http.ResponseWriter, r *http.Request) {
	c := s.controller(r)
	p := domain.Platform(chi.URLParam(r, "platform"))
	s.writeResult(w, c, c.More(r.Context(), p))
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request) {
	c := s.controller(r)
	c.DismissNotice()
	s.writeFeed(w, c)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Drop(Subject(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
