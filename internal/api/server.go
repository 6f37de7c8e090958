// Package api exposes the dashboard over HTTP: triage mutations, the
// per-operator feed, the landed-cost simulator and thumbnail edits.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/dashboard"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/fxrate"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/imageedit"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/ingestion"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/landedcost"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/triage"
)

// RateResolver resolves the exchange rate of a simulation.
type RateResolver interface {
	Resolve(ctx context.Context) fxrate.Quote
}

// ImageEditor edits thumbnails.
type ImageEditor interface {
	Enabled() bool
	Edit(ctx context.Context, image, instruction string) (*imageedit.Result, error)
}

// IngestionStatus reports the ingestion loop state.
type IngestionStatus interface {
	Status() ingestion.RunnerStatus
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	triage     *triage.Service
	sessions   *dashboard.Sessions
	trends     storage.TrendStore
	snapshots  storage.TrendSnapshotStore
	calculator *landedcost.Calculator
	rates      RateResolver
	images     ImageEditor
	hub        http.Handler
	ingestion  IngestionStatus
	jwtSecret  []byte
	logger     *log.Logger
	now        func() time.Time
	started    time.Time
}

// Options contains configuration for creating a Server.
type Options struct {
	Triage     *triage.Service
	Sessions   *dashboard.Sessions // Default: sessions over Triage
	Trends     storage.TrendStore
	Snapshots  storage.TrendSnapshotStore // optional, enables /history
	Calculator *landedcost.Calculator     // Default: DefaultParams
	Rates      RateResolver               // optional
	Images     ImageEditor                // optional
	Hub        http.Handler               // optional websocket endpoint
	Ingestion  IngestionStatus            // optional
	JWTSecret  string                     // empty disables auth
	Logger     *log.Logger
	Now        func() time.Time
}

// NewServer creates the HTTP server.
func NewServer(opts Options) *Server {
	s := &Server{
		triage:     opts.Triage,
		sessions:   opts.Sessions,
		trends:     opts.Trends,
		snapshots:  opts.Snapshots,
		calculator: opts.Calculator,
		rates:      opts.Rates,
		images:     opts.Images,
		hub:        opts.Hub,
		ingestion:  opts.Ingestion,
		jwtSecret:  []byte(opts.JWTSecret),
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if s.sessions == nil {
		s.sessions = dashboard.NewSessions(opts.Triage)
	}
	if s.calculator == nil {
		s.calculator = landedcost.NewCalculator(landedcost.DefaultParams())
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.started = s.now()
	return s
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", observability.Handler())
	if s.hub != nil {
		r.Handle("/ws", s.hub)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/trends", s.handleTrends)
		r.Get("/trends/{id}/history", s.handleTrendHistory)

		r.Get("/feed", s.handleFeed)
		r.Patch("/session", s.handlePatchSession)
		r.Post("/session/refresh", s.handleRefresh)
		r.Post("/session/more/{platform}", s.handleMore)
		r.Delete("/session/notice", s.handleDismissNotice)
		r.Delete("/session", s.handleLogout)

		r.Post("/items/{origin}/{id}/approve", s.handleApprove)
		r.Post("/items/{origin}/{id}/ignore", s.handleIgnore)
		r.Delete("/items/{origin}/{id}", s.handleDelete)

		r.Put("/repository/{id}/status", s.handleUpdateStatus)
		r.Get("/repository/{id}/shorts", s.handleListShorts)
		r.Post("/repository/{id}/shorts", s.handleAddShort)
		r.Put("/shorts/{id}/status", s.handleUpdateShortStatus)

		r.Post("/simulate", s.handleSimulate)
		r.Post("/thumbnails/edit", s.handleEditThumbnail)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status    string                  `json:"status"`
	Uptime    string                  `json:"uptime"`
	Started   time.Time               `json:"started"`
	Sessions  int                     `json:"sessions"`
	Ingestion *ingestion.RunnerStatus `json:"ingestion,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:   "running",
		Uptime:   s.now().Sub(s.started).Round(time.Second).String(),
		Started:  s.started,
		Sessions: s.sessions.Len(),
	}
	if s.ingestion != nil {
		st := s.ingestion.Status()
		resp.Ingestion = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %v: %w", err, domain.ErrInvalidInput)
	}
	return nil
}

// maxBodyBytes bounds request bodies; thumbnails arrive inline as base64.
const maxBodyBytes = 16 << 20
