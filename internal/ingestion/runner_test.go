package ingestion

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/idhash"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/memory"
)

// stubSource returns canned items.
type stubSource struct {
	platform domain.Platform
	enabled  bool
	items    []*domain.TrendItem
	err      error
	calls    int
}

func (s *stubSource) Platform() domain.Platform { return s.platform }
func (s *stubSource) Enabled() bool             { return s.enabled }

func (s *stubSource) Fetch(_ context.Context, limit int) ([]*domain.TrendItem, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*domain.TrendItem, 0, len(s.items))
	for _, it := range s.items {
		c := *it
		out = append(out, &c)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func trend(p domain.Platform, id string, score float64, views int64) *domain.TrendItem {
	return &domain.TrendItem{
		Platform:   p,
		ExternalID: id,
		Title:      "T " + id,
		TrendScore: score,
		Region:     "US",
		Metrics:    domain.TrendMetrics{Views: views},
	}
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestRunner_RunOnceUpsertsAndSnapshots(t *testing.T) {
	trends := memory.NewTrendStore()
	snaps := memory.NewTrendSnapshotStore()
	yt := &stubSource{
		platform: domain.PlatformYouTube,
		enabled:  true,
		items: []*domain.TrendItem{
			trend(domain.PlatformYouTube, "v1", 10, 100),
			trend(domain.PlatformYouTube, "v2", 20, 200),
			trend(domain.PlatformYouTube, "v1", 99, 1),
		},
	}
	tw := &stubSource{platform: domain.PlatformTwitch}

	r := NewRunner(RunnerOptions{
		Sources:       []TrendSource{yt, tw},
		TrendStore:    trends,
		SnapshotStore: snaps,
		Logger:        quietLogger(),
		Now:           nowFn,
	})

	res, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Ingested[domain.PlatformYouTube])
	assert.Equal(t, []domain.Platform{domain.PlatformTwitch}, res.Skipped)
	assert.Zero(t, tw.calls, "disabled source must not be fetched")

	ctx := context.Background()
	id := idhash.ComputeTrendID(domain.PlatformYouTube, "v1")
	got, err := trends.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, got.LastUpdated)
	assert.InDelta(t, 10.0, got.TrendScore, 1e-9, "first occurrence wins")

	listed, err := trends.List(ctx, domain.TrendQuery{Platform: domain.PlatformYouTube})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "v2", listed[0].ExternalID)

	history, err := snaps.GetByTrendID(ctx, id, time.Time{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(100), history[0].Audience)
	assert.Equal(t, fixedNow, history[0].CapturedAt)
}

func TestRunner_PartialAndTotalFailure(t *testing.T) {
	trends := memory.NewTrendStore()
	ok := &stubSource{platform: domain.PlatformYouTube, enabled: true,
		items: []*domain.TrendItem{trend(domain.PlatformYouTube, "v1", 1, 1)}}
	bad := &stubSource{platform: domain.PlatformTwitch, enabled: true, err: errors.New("boom")}

	r := NewRunner(RunnerOptions{
		Sources:    []TrendSource{bad, ok},
		TrendStore: trends,
		Logger:     quietLogger(),
	})
	res, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ingested[domain.PlatformYouTube])
	assert.Error(t, res.Failed[domain.PlatformTwitch])

	r = NewRunner(RunnerOptions{
		Sources:    []TrendSource{bad},
		TrendStore: trends,
		Logger:     quietLogger(),
	})
	_, err = r.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	src := &stubSource{platform: domain.PlatformYouTube, enabled: true}
	r := NewRunner(RunnerOptions{
		Sources:    []TrendSource{src},
		TrendStore: memory.NewTrendStore(),
		Interval:   5 * time.Millisecond,
		Logger:     quietLogger(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, src.calls, 2)
}

func TestRunner_Status(t *testing.T) {
	r := NewRunner(RunnerOptions{
		Sources:    []TrendSource{&stubSource{platform: domain.PlatformTwitch}},
		TrendStore: memory.NewTrendStore(),
		Logger:     quietLogger(),
		Now:        nowFn,
	})
	assert.Zero(t, r.Status().Cycles)

	_, err := r.RunOnce(context.Background())
	require.NoError(t, err)

	st := r.Status()
	assert.Equal(t, 1, st.Cycles)
	assert.Equal(t, fixedNow, st.LastRun)
	require.NotNil(t, st.LastCycle)
	assert.Equal(t, "skipped", st.LastCycle.Status)
}
