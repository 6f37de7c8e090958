package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/triage"
)

func refFromPath(r *http.Request) (domain.VideoRef, error) {
	ref := domain.VideoRef{
		Origin: domain.Origin(chi.URLParam(r, "origin")),
		ID:     chi.URLParam(r, "id"),
	}
	if !ref.Origin.IsValid() {
		return ref, fmt.Errorf("origin %q: %w", ref.Origin, domain.ErrInvalidInput)
	}
	return ref, nil
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	c := s.controller(r)
	s.writeResult(w, c, c.Approve(r.Context(), ref))
}

func (s *Server) handleIgnore(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	c := s.controller(r)
	s.writeResult(w, c, c.Ignore(r.Context(), ref))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	c := s.controller(r)
	s.writeResult(w, c, c.Delete(r.Context(), ref))
}

type statusRequest struct {
	Status domain.TriageState `json:"status"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	c := s.controller(r)
	s.writeResult(w, c, c.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status))
}

// ShortJSON is the wire form of a short clip.
type ShortJSON struct {
	ID           string               `json:"id"`
	RepositoryID string               `json:"repositoryId"`
	Link         string               `json:"link"`
	Platform     domain.ShortPlatform `json:"platform"`
	Status       domain.ShortStatus   `json:"status"`
	CreatedAt    time.Time            `json:"createdAt"`
}

func toShortJSON(sh *domain.Short) ShortJSON {
	return ShortJSON{
		ID:           sh.ID,
		RepositoryID: sh.RepositoryID,
		Link:         sh.Link,
		Platform:     sh.Platform,
		Status:       sh.Status,
		CreatedAt:    sh.CreatedAt,
	}
}

func (s *Server) handleListShorts(w http.ResponseWriter, r *http.Request) {
	shorts, err := s.triage.Shorts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]ShortJSON, 0, len(shorts))
	for _, sh := range shorts {
		out = append(out, toShortJSON(sh))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddShort(w http.ResponseWriter, r *http.Request) {
	var in triage.ShortInput
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &in); err != nil {
			s.writeError(w, err)
			return
		}
	}
	sh, err := s.triage.AddShort(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShortJSON(sh))
}

type shortStatusRequest struct {
	Status domain.ShortStatus `json:"status"`
}

func (s *Server) handleUpdateShortStatus(w http.ResponseWriter, r *http.Request) {
	var req shortStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.triage.UpdateShortStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
