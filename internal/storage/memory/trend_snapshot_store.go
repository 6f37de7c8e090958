package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// TrendSnapshotStore is an in-memory implementation of storage.TrendSnapshotStore.
type TrendSnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.TrendSnapshot // keyed by trend id
}

// NewTrendSnapshotStore creates a new in-memory snapshot store.
func NewTrendSnapshotStore() *TrendSnapshotStore {
	return &TrendSnapshotStore{
		data: make(map[string][]*domain.TrendSnapshot),
	}
}

// InsertBulk appends snapshots.
func (s *TrendSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.TrendSnapshot) error {
	for _, sn := range snapshots {
		if sn == nil || sn.TrendID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sn := range snapshots {
		snapCopy := *sn
		s.data[sn.TrendID] = append(s.data[sn.TrendID], &snapCopy)
	}
	return nil
}

// GetByTrendID retrieves snapshots captured at or after since, ordered by captured_at ASC.
func (s *TrendSnapshotStore) GetByTrendID(_ context.Context, trendID string, since time.Time) ([]*domain.TrendSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TrendSnapshot
	for _, sn := range s.data[trendID] {
		if sn.CapturedAt.Before(since) {
			continue
		}
		snapCopy := *sn
		result = append(result, &snapCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CapturedAt.Before(result[j].CapturedAt)
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.TrendSnapshotStore = (*TrendSnapshotStore)(nil)
