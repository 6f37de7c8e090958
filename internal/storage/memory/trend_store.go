package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/idhash"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// TrendStore is an in-memory implementation of storage.TrendStore.
type TrendStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TrendItem // keyed by trend id
}

// NewTrendStore creates a new in-memory trend store.
func NewTrendStore() *TrendStore {
	return &TrendStore{
		data: make(map[string]*domain.TrendItem),
	}
}

// Upsert inserts or replaces items keyed by (platform, external_id).
func (s *TrendStore) Upsert(_ context.Context, items []*domain.TrendItem) error {
	for _, it := range items {
		if it == nil || it.ExternalID == "" || !it.Platform.IsValid() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		itemCopy := *it
		itemCopy.ID = idhash.ComputeTrendID(it.Platform, it.ExternalID)
		s.data[itemCopy.ID] = &itemCopy
	}
	return nil
}

// GetByID retrieves a trend by its ID. Returns ErrNotFound if not exists.
func (s *TrendStore) GetByID(_ context.Context, id string) (*domain.TrendItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	itemCopy := *it
	return &itemCopy, nil
}

// GetByIDs retrieves the trends that exist among ids.
func (s *TrendStore) GetByIDs(_ context.Context, ids []string) (map[string]*domain.TrendItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.TrendItem, len(ids))
	for _, id := range ids {
		if it, ok := s.data[id]; ok {
			itemCopy := *it
			result[id] = &itemCopy
		}
	}
	return result, nil
}

// List retrieves trends of one platform ordered by trend_score DESC.
func (s *TrendStore) List(_ context.Context, q domain.TrendQuery) ([]*domain.TrendItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TrendItem
	for _, it := range s.data {
		if it.Platform != q.Platform {
			continue
		}
		if q.Region != "" && it.Region != q.Region {
			continue
		}
		itemCopy := *it
		result = append(result, &itemCopy)
	}

	// Sort by trend_score DESC, id ASC for stable output
	sort.Slice(result, func(i, j int) bool {
		if result[i].TrendScore != result[j].TrendScore {
			return result[i].TrendScore > result[j].TrendScore
		}
		return result[i].ID < result[j].ID
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TrendStore = (*TrendStore)(nil)
