package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/idhash"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

func TestTrendStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTrendStore(pool)
	ctx := context.Background()

	published := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	item := &domain.TrendItem{
		Platform:     domain.PlatformYouTube,
		ExternalID:   "dQw4w9WgXcQ",
		Title:        "Trending",
		ChannelTitle: "Canal",
		Metrics:      domain.TrendMetrics{Views: 1000, Likes: 10},
		TrendScore:   250,
		Region:       "BR",
		PublishedAt:  published,
	}

	require.NoError(t, store.Upsert(ctx, []*domain.TrendItem{item}))

	id := idhash.ComputeTrendID(domain.PlatformYouTube, "dQw4w9WgXcQ")
	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, item.Title, got.Title)
	assert.Equal(t, item.Metrics, got.Metrics)
	assert.Equal(t, item.TrendScore, got.TrendScore)
	assert.True(t, published.Equal(got.PublishedAt))
	assert.False(t, got.LastUpdated.IsZero())

	// Upsert on the same (platform, external_id) replaces the row
	item.TrendScore = 900
	item.Title = "Trending again"
	require.NoError(t, store.Upsert(ctx, []*domain.TrendItem{item}))

	got, err = store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 900.0, got.TrendScore)
	assert.Equal(t, "Trending again", got.Title)
}

func TestTrendStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewTrendStore(pool).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTrendStore_ListFilters(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTrendStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []*domain.TrendItem{
		{Platform: domain.PlatformYouTube, ExternalID: "a", Region: "BR", TrendScore: 10},
		{Platform: domain.PlatformYouTube, ExternalID: "b", Region: "US", TrendScore: 30},
		{Platform: domain.PlatformYouTube, ExternalID: "c", Region: "BR", TrendScore: 20},
		{Platform: domain.PlatformTwitch, ExternalID: "d", Region: domain.RegionGlobal, TrendScore: 99},
	}))

	all, err := store.List(ctx, domain.TrendQuery{Platform: domain.PlatformYouTube})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].ExternalID)

	br, err := store.List(ctx, domain.TrendQuery{Platform: domain.PlatformYouTube, Region: "BR", Limit: 1})
	require.NoError(t, err)
	require.Len(t, br, 1)
	assert.Equal(t, "c", br[0].ExternalID)

	twitch, err := store.List(ctx, domain.TrendQuery{Platform: domain.PlatformTwitch})
	require.NoError(t, err)
	require.Len(t, twitch, 1)

	byIDs, err := store.GetByIDs(ctx, []string{twitch[0].ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)
}
