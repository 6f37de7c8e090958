package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/dashboard"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/imageedit"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Notice *dashboard.Notice `json:"notice,omitempty"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, imageedit.ErrInvalidImage),
		errors.Is(err, imageedit.ErrEmptyPrompt):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnsupportedOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, imageedit.ErrNoResult):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, imageedit.ErrDisabled),
		errors.Is(err, errFeatureDisabled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Notice: dashboard.NoticeFor(err)})
}

// writeNotice responds with the notice already chosen by the controller.
func (s *Server) writeNotice(w http.ResponseWriter, err error, notice *dashboard.Notice) {
	if notice == nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, StatusFor(err), ErrorResponse{Error: err.Error(), Notice: notice})
}
