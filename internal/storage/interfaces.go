package storage

import (
	"context"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
)

// TrendStore provides access to the trends_cache table.
type TrendStore interface {
	// Upsert inserts or replaces items keyed by (platform, external_id).
	Upsert(ctx context.Context, items []*domain.TrendItem) error

	// GetByID retrieves a trend by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.TrendItem, error)

	// GetByIDs retrieves the trends that exist among ids, keyed by ID.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.TrendItem, error)

	// List retrieves trends of one platform ordered by trend_score DESC.
	// Region is filtered only when q.Region is non-empty; q.Limit <= 0 means no limit.
	List(ctx context.Context, q domain.TrendQuery) ([]*domain.TrendItem, error)
}

// RepositoryStore provides access to the repository table.
type RepositoryStore interface {
	// Insert adds a new entry. Returns ErrDuplicateKey if id or trend_id exists.
	Insert(ctx context.Context, e *domain.RepositoryEntry) error

	// GetByID retrieves an entry by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.RepositoryEntry, error)

	// GetByTrendID retrieves the entry referencing a trend. Returns ErrNotFound if not exists.
	GetByTrendID(ctx context.Context, trendID string) (*domain.RepositoryEntry, error)

	// List retrieves all entries ordered by saved_at DESC.
	List(ctx context.Context) ([]*domain.RepositoryEntry, error)

	// UpdateStatus sets the status of an entry. Returns ErrNotFound if not exists.
	UpdateStatus(ctx context.Context, id string, status domain.RepositoryStatus) error

	// Delete removes an entry. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id string) error
}

// ShortStore provides access to the shorts table.
type ShortStore interface {
	// Insert adds a new short. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, s *domain.Short) error

	// GetByID retrieves a short by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Short, error)

	// ListByRepositoryID retrieves shorts of an entry ordered by created_at ASC.
	ListByRepositoryID(ctx context.Context, repositoryID string) ([]*domain.Short, error)

	// UpdateStatus sets the status of a short. Returns ErrNotFound if not exists.
	UpdateStatus(ctx context.Context, id string, status domain.ShortStatus) error

	// DeleteByRepositoryID removes all shorts of an entry.
	DeleteByRepositoryID(ctx context.Context, repositoryID string) error
}

// TrendSnapshotStore provides access to trend_snapshots history.
type TrendSnapshotStore interface {
	// InsertBulk appends snapshots.
	InsertBulk(ctx context.Context, snapshots []*domain.TrendSnapshot) error

	// GetByTrendID retrieves snapshots captured at or after since, ordered by captured_at ASC.
	GetByTrendID(ctx context.Context, trendID string, since time.Time) ([]*domain.TrendSnapshot, error)
}
