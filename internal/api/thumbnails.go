package api

import (
	"fmt"
	"net/http"
)

type editRequest struct {
	Image  string `json:"image"`  // base64 or data URL
	Prompt string `json:"prompt"` // edit instruction
}

func (s *Server) handleEditThumbnail(w http.ResponseWriter, r *http.Request) {
	if s.images == nil || !s.images.Enabled() {
		s.writeError(w, fmt.Errorf("thumbnail edit: %w: configure GEMINI_API_KEY", errFeatureDisabled))
		return
	}

	var req editRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.images.Edit(r.Context(), req.Image, req.Prompt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
