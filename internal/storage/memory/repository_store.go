package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// RepositoryStore is an in-memory implementation of storage.RepositoryStore.
type RepositoryStore struct {
	mu      sync.RWMutex
	data    map[string]*domain.RepositoryEntry // keyed by id
	byTrend map[string]string                  // trend_id -> id
}

// NewRepositoryStore creates a new in-memory repository store.
func NewRepositoryStore() *RepositoryStore {
	return &RepositoryStore{
		data:    make(map[string]*domain.RepositoryEntry),
		byTrend: make(map[string]string),
	}
}

// Insert adds a new entry. Returns ErrDuplicateKey if id or trend_id exists.
func (s *RepositoryStore) Insert(_ context.Context, e *domain.RepositoryEntry) error {
	if e == nil || e.ID == "" || e.TrendID == "" || !e.Status.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byTrend[e.TrendID]; exists {
		return storage.ErrDuplicateKey
	}

	entryCopy := *e
	s.data[e.ID] = &entryCopy
	s.byTrend[e.TrendID] = e.ID
	return nil
}

// GetByID retrieves an entry by its ID. Returns ErrNotFound if not exists.
func (s *RepositoryStore) GetByID(_ context.Context, id string) (*domain.RepositoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	entryCopy := *e
	return &entryCopy, nil
}

// GetByTrendID retrieves the entry referencing a trend. Returns ErrNotFound if not exists.
func (s *RepositoryStore) GetByTrendID(_ context.Context, trendID string) (*domain.RepositoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byTrend[trendID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	entryCopy := *s.data[id]
	return &entryCopy, nil
}

// List retrieves all entries ordered by saved_at DESC.
func (s *RepositoryStore) List(_ context.Context) ([]*domain.RepositoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RepositoryEntry, 0, len(s.data))
	for _, e := range s.data {
		entryCopy := *e
		result = append(result, &entryCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].SavedAt.Equal(result[j].SavedAt) {
			return result[i].SavedAt.After(result[j].SavedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// UpdateStatus sets the status of an entry. Returns ErrNotFound if not exists.
func (s *RepositoryStore) UpdateStatus(_ context.Context, id string, status domain.RepositoryStatus) error {
	if !status.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	e.Status = status
	return nil
}

// Delete removes an entry. Returns ErrNotFound if not exists.
func (s *RepositoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	delete(s.byTrend, e.TrendID)
	delete(s.data, id)
	return nil
}

// Verify interface compliance at compile time.
var _ storage.RepositoryStore = (*RepositoryStore)(nil)
