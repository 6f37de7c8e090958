package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// ShortStore is an in-memory implementation of storage.ShortStore.
type ShortStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Short // keyed by id
}

// NewShortStore creates a new in-memory short store.
func NewShortStore() *ShortStore {
	return &ShortStore{
		data: make(map[string]*domain.Short),
	}
}

// Insert adds a new short. Returns ErrDuplicateKey if id exists.
func (s *ShortStore) Insert(_ context.Context, sh *domain.Short) error {
	if sh == nil || sh.ID == "" || sh.RepositoryID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sh.ID]; exists {
		return storage.ErrDuplicateKey
	}
	shortCopy := *sh
	s.data[sh.ID] = &shortCopy
	return nil
}

// GetByID retrieves a short by its ID. Returns ErrNotFound if not exists.
func (s *ShortStore) GetByID(_ context.Context, id string) (*domain.Short, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	shortCopy := *sh
	return &shortCopy, nil
}

// ListByRepositoryID retrieves shorts of an entry ordered by created_at ASC.
func (s *ShortStore) ListByRepositoryID(_ context.Context, repositoryID string) ([]*domain.Short, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Short
	for _, sh := range s.data {
		if sh.RepositoryID == repositoryID {
			shortCopy := *sh
			result = append(result, &shortCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// UpdateStatus sets the status of a short. Returns ErrNotFound if not exists.
func (s *ShortStore) UpdateStatus(_ context.Context, id string, status domain.ShortStatus) error {
	if !status.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sh, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	sh.Status = status
	return nil
}

// DeleteByRepositoryID removes all shorts of an entry.
func (s *ShortStore) DeleteByRepositoryID(_ context.Context, repositoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sh := range s.data {
		if sh.RepositoryID == repositoryID {
			delete(s.data, id)
		}
	}
	return nil
}

// Verify interface compliance at compile time.
var _ storage.ShortStore = (*ShortStore)(nil)
