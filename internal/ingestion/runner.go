package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/idhash"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// Defaults for RunnerOptions.
const (
	DefaultInterval = 1 * time.Hour
	DefaultLimit    = 50
)

// Runner fetches every enabled source and upserts the results into the
// trends cache, recording a score snapshot per item.
type Runner struct {
	sources   []TrendSource
	trends    storage.TrendStore
	snapshots storage.TrendSnapshotStore
	interval  time.Duration
	limit     int
	logger    *log.Logger
	now       func() time.Time

	mu        sync.Mutex
	lastRun   time.Time
	lastCycle *CycleResult
	cycles    int
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Sources       []TrendSource
	TrendStore    storage.TrendStore
	SnapshotStore storage.TrendSnapshotStore // optional
	Interval      time.Duration              // Default: 1h
	Limit         int                        // Default: 50 items per source
	Logger        *log.Logger
	Now           func() time.Time
}

// CycleResult summarises one RunOnce pass.
type CycleResult struct {
	// Status is success, partial, failed or skipped.
	Status   string                    `json:"status"`
	Ingested map[domain.Platform]int   `json:"ingested"`
	Skipped  []domain.Platform         `json:"skipped,omitempty"`
	Failed   map[domain.Platform]error `json:"-"`
}

// RunnerStatus is a point-in-time view of the runner for /status.
type RunnerStatus struct {
	Interval  string       `json:"interval"`
	Cycles    int          `json:"cycles"`
	LastRun   time.Time    `json:"last_run,omitempty"`
	LastCycle *CycleResult `json:"last_cycle,omitempty"`
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Runner{
		sources:   opts.Sources,
		trends:    opts.TrendStore,
		snapshots: opts.SnapshotStore,
		interval:  interval,
		limit:     limit,
		logger:    logger,
		now:       now,
	}
}

// RunOnce runs one ingestion pass over all sources. A failing source does
// not stop the others; an error is returned only when every enabled source
// failed.
func (r *Runner) RunOnce(ctx context.Context) (*CycleResult, error) {
	res := &CycleResult{
		Ingested: make(map[domain.Platform]int),
		Failed:   make(map[domain.Platform]error),
	}

	enabled := 0
	for _, src := range r.sources {
		p := src.Platform()
		if !src.Enabled() {
			r.logger.Printf("%s: credentials missing, skipping", p)
			res.Skipped = append(res.Skipped, p)
			continue
		}
		enabled++

		n, err := r.ingest(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			r.logger.Printf("%s: %v", p, err)
			res.Failed[p] = err
			continue
		}
		res.Ingested[p] = n
		r.logger.Printf("%s: upserted %d trends", p, n)
	}

	status := "success"
	var err error
	switch {
	case enabled == 0:
		status = "skipped"
	case len(res.Failed) == enabled:
		status = "failed"
		err = fmt.Errorf("all %d sources failed", enabled)
	case len(res.Failed) > 0:
		status = "partial"
	}
	res.Status = status
	observability.RecordIngestionCycle(status, r.now())

	r.mu.Lock()
	r.lastRun = r.now().UTC()
	r.lastCycle = res
	r.cycles++
	r.mu.Unlock()

	return res, err
}

// Status returns the outcome of the most recent cycle.
func (r *Runner) Status() RunnerStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunnerStatus{
		Interval:  r.interval.String(),
		Cycles:    r.cycles,
		LastRun:   r.lastRun,
		LastCycle: r.lastCycle,
	}
}

func (r *Runner) ingest(ctx context.Context, src TrendSource) (int, error) {
	p := src.Platform()

	start := time.Now()
	items, err := src.Fetch(ctx, r.limit)
	observability.RecordFetchLatency(string(p), time.Since(start).Seconds())
	if err != nil {
		observability.RecordIngestionError(string(p), "fetch")
		return 0, fmt.Errorf("fetch: %w", err)
	}

	items = dedupe(items)
	if len(items) == 0 {
		return 0, nil
	}

	now := r.now().UTC()
	for _, it := range items {
		it.ID = idhash.ComputeTrendID(it.Platform, it.ExternalID)
		it.LastUpdated = now
	}
	SortTrends(items)

	if err := r.trends.Upsert(ctx, items); err != nil {
		observability.RecordIngestionError(string(p), "upsert")
		return 0, fmt.Errorf("upsert: %w", err)
	}
	observability.RecordTrendsIngested(string(p), len(items))

	if r.snapshots != nil {
		snaps := make([]*domain.TrendSnapshot, 0, len(items))
		for _, it := range items {
			snaps = append(snaps, &domain.TrendSnapshot{
				TrendID:    it.ID,
				Platform:   it.Platform,
				ExternalID: it.ExternalID,
				TrendScore: it.TrendScore,
				Audience:   it.Metrics.Audience(),
				CapturedAt: now,
			})
		}
		// History is best effort; the cache is already updated.
		if err := r.snapshots.InsertBulk(ctx, snaps); err != nil {
			observability.RecordIngestionError(string(p), "snapshot")
			r.logger.Printf("%s: snapshot insert failed: %v", p, err)
		}
	}

	return len(items), nil
}

// Run executes RunOnce immediately and then on every interval tick.
// It blocks until context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Printf("Runner started, interval: %v, limit: %d", r.interval, r.limit)

	if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Printf("ingestion cycle failed: %v", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("Runner stopping...")
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Printf("ingestion cycle failed: %v", err)
			}
		}
	}
}
