package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/dashboard"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/triage"
)

// handleTrends returns the raw per-platform top lists, saved or not.
//
// Query: platform (optional), region (ISO code, ignored for platforms
// without a region filter), limit (default 24).
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := triage.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, fmt.Errorf("limit %q: %w", raw, domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	descriptors := domain.Platforms
	if p := domain.Platform(q.Get("platform")); p != "" {
		d, ok := domain.Describe(p)
		if !ok {
			s.writeError(w, fmt.Errorf("platform %q: %w", p, domain.ErrInvalidInput))
			return
		}
		descriptors = []domain.PlatformDescriptor{d}
	}
	region := strings.ToUpper(strings.TrimSpace(q.Get("region")))

	out := make(map[domain.Platform][]domain.Video, len(descriptors))
	for _, d := range descriptors {
		tq := domain.TrendQuery{Platform: d.Platform, Limit: limit}
		if d.SupportsRegionFilter && region != "" && region != domain.RegionGlobal {
			tq.Region = region
		}
		items, err := s.trends.List(r.Context(), tq)
		if err != nil {
			s.writeError(w, fmt.Errorf("list %s trends: %w: %v", d.Platform, domain.ErrUpstreamUnavailable, err))
			return
		}
		videos := make([]domain.Video, 0, len(items))
		for _, it := range items {
			if v, ok := domain.NormalizeVideo(domain.VideoSource{Trend: it}); ok {
				videos = append(videos, v)
			}
		}
		out[d.Platform] = videos
	}
	writeJSON(w, http.StatusOK, out)
}

// SnapshotJSON is one point of a trend's score history.
type SnapshotJSON struct {
	TrendScore float64   `json:"trendScore"`
	Audience   int64     `json:"audience"`
	CapturedAt time.Time `json:"capturedAt"`
}

// HistoryResponse is the response of /api/trends/{id}/history.
type HistoryResponse struct {
	TrendID   string         `json:"trendId"`
	Since     time.Time      `json:"since"`
	Snapshots []SnapshotJSON `json:"snapshots"`
}

// handleTrendHistory returns score snapshots of a trend within a period
// (24h, 7d, 30d, 90d or any Go duration; default 7d).
func (s *Server) handleTrendHistory(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, fmt.Errorf("trend history: %w", errFeatureDisabled))
		return
	}

	id := chi.URLParam(r, "id")
	window, err := PeriodDuration(r.URL.Query().Get("period"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.trends.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, fmt.Errorf("trend %s: %w", id, domain.ErrNotFound))
			return
		}
		s.writeError(w, fmt.Errorf("get trend: %w: %v", domain.ErrUpstreamUnavailable, err))
		return
	}

	since := s.now().UTC().Add(-window)
	snaps, err := s.snapshots.GetByTrendID(r.Context(), id, since)
	if err != nil {
		s.writeError(w, fmt.Errorf("trend history: %w: %v", domain.ErrUpstreamUnavailable, err))
		return
	}

	resp := HistoryResponse{TrendID: id, Since: since, Snapshots: make([]SnapshotJSON, 0, len(snaps))}
	for _, sn := range snaps {
		resp.Snapshots = append(resp.Snapshots, SnapshotJSON{
			TrendScore: sn.TrendScore,
			Audience:   sn.Audience,
			CapturedAt: sn.CapturedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// PeriodDuration converts a dashboard period or Go duration to a window.
func PeriodDuration(raw string) (time.Duration, error) {
	switch dashboard.Period(raw) {
	case "", dashboard.PeriodWeek:
		return 7 * 24 * time.Hour, nil
	case dashboard.PeriodDay:
		return 24 * time.Hour, nil
	case dashboard.PeriodMonth:
		return 30 * 24 * time.Hour, nil
	case dashboard.PeriodQuarter:
		return 90 * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("period %q: %w", raw, domain.ErrInvalidInput)
	}
	return d, nil
}
