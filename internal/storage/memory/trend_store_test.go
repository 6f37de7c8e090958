package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/idhash"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

func trend(p domain.Platform, externalID, region string, score float64) *domain.TrendItem {
	return &domain.TrendItem{
		Platform:    p,
		ExternalID:  externalID,
		Title:       "title " + externalID,
		Region:      region,
		TrendScore:  score,
		PublishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTrendStore_UpsertAssignsDeterministicID(t *testing.T) {
	store := NewTrendStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, []*domain.TrendItem{trend(domain.PlatformYouTube, "v1", "BR", 10)}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	id := idhash.ComputeTrendID(domain.PlatformYouTube, "v1")
	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ExternalID != "v1" || got.ID != id {
		t.Errorf("unexpected item %+v", got)
	}
}

func TestTrendStore_UpsertReplaces(t *testing.T) {
	store := NewTrendStore()
	ctx := context.Background()

	first := trend(domain.PlatformYouTube, "v1", "BR", 10)
	second := trend(domain.PlatformYouTube, "v1", "BR", 99)
	second.Title = "updated"

	if err := store.Upsert(ctx, []*domain.TrendItem{first}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, []*domain.TrendItem{second}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	items, _ := store.List(ctx, domain.TrendQuery{Platform: domain.PlatformYouTube})
	if len(items) != 1 {
		t.Fatalf("expected 1 item after upsert, got %d", len(items))
	}
	if items[0].Title != "updated" || items[0].TrendScore != 99 {
		t.Errorf("upsert did not replace: %+v", items[0])
	}
}

func TestTrendStore_ListOrderingRegionAndLimit(t *testing.T) {
	store := NewTrendStore()
	ctx := context.Background()

	_ = store.Upsert(ctx, []*domain.TrendItem{
		trend(domain.PlatformYouTube, "a", "BR", 5),
		trend(domain.PlatformYouTube, "b", "US", 50),
		trend(domain.PlatformYouTube, "c", "BR", 30),
		trend(domain.PlatformYouTube, "d", "BR", 20),
		trend(domain.PlatformTwitch, "e", domain.RegionGlobal, 100),
	})

	all, _ := store.List(ctx, domain.TrendQuery{Platform: domain.PlatformYouTube})
	if len(all) != 4 {
		t.Fatalf("expected 4 youtube items, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].TrendScore < all[i].TrendScore {
			t.Errorf("not ordered by score desc at %d", i)
		}
	}

	br, _ := store.List(ctx, domain.TrendQuery{Platform: domain.PlatformYouTube, Region: "BR", Limit: 2})
	if len(br) != 2 {
		t.Fatalf("expected 2 items, got %d", len(br))
	}
	if br[0].ExternalID != "c" || br[1].ExternalID != "d" {
		t.Errorf("unexpected order: %s, %s", br[0].ExternalID, br[1].ExternalID)
	}
}

func TestTrendStore_InvalidInput(t *testing.T) {
	store := NewTrendStore()
	err := store.Upsert(context.Background(), []*domain.TrendItem{{Platform: "vimeo", ExternalID: "x"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTrendStore_GetByIDs(t *testing.T) {
	store := NewTrendStore()
	ctx := context.Background()
	_ = store.Upsert(ctx, []*domain.TrendItem{trend(domain.PlatformTwitch, "s1", domain.RegionGlobal, 1)})

	id := idhash.ComputeTrendID(domain.PlatformTwitch, "s1")
	got, err := store.GetByIDs(ctx, []string{id, "missing"})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 1 || got[id] == nil {
		t.Errorf("unexpected result %v", got)
	}
}

func TestTrendStore_ConcurrentAccess(t *testing.T) {
	store := NewTrendStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Upsert(ctx, []*domain.TrendItem{trend(domain.PlatformYouTube, string(rune('a'+i%26)), "BR", float64(i))})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.List(ctx, domain.TrendQuery{Platform: domain.PlatformYouTube, Limit: 10})
		}()
	}
	wg.Wait()

	items, _ := store.List(ctx, domain.TrendQuery{Platform: domain.PlatformYouTube})
	if len(items) != 26 {
		t.Errorf("expected 26 distinct items, got %d", len(items))
	}
}
