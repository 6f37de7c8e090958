package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// RepositoryStore implements storage.RepositoryStore using PostgreSQL.
type RepositoryStore struct {
	pool *Pool
}

// NewRepositoryStore creates a new RepositoryStore.
func NewRepositoryStore(pool *Pool) *RepositoryStore {
	return &RepositoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RepositoryStore = (*RepositoryStore)(nil)

// Insert adds a new entry. Returns ErrDuplicateKey if id or trend_id exists.
func (s *RepositoryStore) Insert(ctx context.Context, e *domain.RepositoryEntry) (err error) {
	if e == nil || !validUUID(e.ID) || e.TrendID == "" || !e.Status.IsValid() {
		return storage.ErrInvalidInput
	}

	start := time.Now()
	defer func() { observability.RecordDBQuery("postgres", "repository_insert", time.Since(start).Seconds(), err) }()

	query := `
		INSERT INTO repository (id, trend_id, status, saved_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = s.pool.Exec(ctx, query, e.ID, e.TrendID, string(e.Status), e.SavedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert repository entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by its ID. Returns ErrNotFound if not exists.
func (s *RepositoryStore) GetByID(ctx context.Context, id string) (*domain.RepositoryEntry, error) {
	if !validUUID(id) {
		return nil, storage.ErrNotFound
	}

	query := `SELECT id, trend_id, status, saved_at FROM repository WHERE id = $1`

	e, err := scanRepositoryEntry(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get repository entry by id: %w", err)
	}
	return e, nil
}

// GetByTrendID retrieves the entry referencing a trend. Returns ErrNotFound if not exists.
func (s *RepositoryStore) GetByTrendID(ctx context.Context, trendID string) (*domain.RepositoryEntry, error) {
	query := `SELECT id, trend_id, status, saved_at FROM repository WHERE trend_id = $1`

	e, err := scanRepositoryEntry(s.pool.QueryRow(ctx, query, trendID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get repository entry by trend id: %w", err)
	}
	return e, nil
}

// List retrieves all entries ordered by saved_at DESC.
func (s *RepositoryStore) List(ctx context.Context) ([]*domain.RepositoryEntry, error) {
	query := `
		SELECT id, trend_id, status, saved_at
		FROM repository
		ORDER BY saved_at DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query repository: %w", err)
	}
	defer rows.Close()

	var result []*domain.RepositoryEntry
	for rows.Next() {
		e, err := scanRepositoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repository: %w", err)
	}
	return result, nil
}

// UpdateStatus sets the status of an entry. Returns ErrNotFound if not exists.
func (s *RepositoryStore) UpdateStatus(ctx context.Context, id string, status domain.RepositoryStatus) error {
	if !status.IsValid() {
		return storage.ErrInvalidInput
	}
	if !validUUID(id) {
		return storage.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `UPDATE repository SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update repository status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes an entry; its shorts go with it (ON DELETE CASCADE).
// Returns ErrNotFound if not exists.
func (s *RepositoryStore) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return storage.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM repository WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete repository entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanRepositoryEntry scans a single row into RepositoryEntry.
func scanRepositoryEntry(row pgx.Row) (*domain.RepositoryEntry, error) {
	var (
		e      domain.RepositoryEntry
		status string
	)
	if err := row.Scan(&e.ID, &e.TrendID, &status, &e.SavedAt); err != nil {
		return nil, err
	}
	e.Status = domain.RepositoryStatus(status)
	return &e, nil
}
