package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// ShortStore implements storage.ShortStore using PostgreSQL.
type ShortStore struct {
	pool *Pool
}

// NewShortStore creates a new ShortStore.
func NewShortStore(pool *Pool) *ShortStore {
	return &ShortStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ShortStore = (*ShortStore)(nil)

// Insert adds a new short. Returns ErrDuplicateKey if id exists and
// ErrNotFound if the repository entry does not exist.
func (s *ShortStore) Insert(ctx context.Context, sh *domain.Short) error {
	if sh == nil || !validUUID(sh.ID) {
		return storage.ErrInvalidInput
	}
	if !validUUID(sh.RepositoryID) {
		return storage.ErrNotFound
	}

	query := `
		INSERT INTO shorts (id, repository_id, link, platform, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		sh.ID,
		sh.RepositoryID,
		sh.Link,
		string(sh.Platform),
		string(sh.Status),
		sh.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("insert short: %w", err)
	}
	return nil
}

// GetByID retrieves a short by its ID. Returns ErrNotFound if not exists.
func (s *ShortStore) GetByID(ctx context.Context, id string) (*domain.Short, error) {
	if !validUUID(id) {
		return nil, storage.ErrNotFound
	}

	query := `
		SELECT id, repository_id, link, platform, status, created_at
		FROM shorts
		WHERE id = $1
	`

	sh, err := scanShort(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get short by id: %w", err)
	}
	return sh, nil
}

// ListByRepositoryID retrieves shorts of an entry ordered by created_at ASC.
func (s *ShortStore) ListByRepositoryID(ctx context.Context, repositoryID string) ([]*domain.Short, error) {
	if !validUUID(repositoryID) {
		return nil, nil
	}

	query := `
		SELECT id, repository_id, link, platform, status, created_at
		FROM shorts
		WHERE repository_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("query shorts: %w", err)
	}
	defer rows.Close()

	var result []*domain.Short
	for rows.Next() {
		sh, err := scanShort(rows)
		if err != nil {
			return nil, fmt.Errorf("scan short: %w", err)
		}
		result = append(result, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shorts: %w", err)
	}
	return result, nil
}

// UpdateStatus sets the status of a short. Returns ErrNotFound if not exists.
func (s *ShortStore) UpdateStatus(ctx context.Context, id string, status domain.ShortStatus) error {
	if !status.IsValid() {
		return storage.ErrInvalidInput
	}
	if !validUUID(id) {
		return storage.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `UPDATE shorts SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update short status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteByRepositoryID removes all shorts of an entry.
func (s *ShortStore) DeleteByRepositoryID(ctx context.Context, repositoryID string) error {
	if !validUUID(repositoryID) {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM shorts WHERE repository_id = $1`, repositoryID); err != nil {
		return fmt.Errorf("delete shorts: %w", err)
	}
	return nil
}

// scanShort scans a single row into Short.
func scanShort(row pgx.Row) (*domain.Short, error) {
	var (
		sh       domain.Short
		platform string
		status   string
	)
	if err := row.Scan(&sh.ID, &sh.RepositoryID, &sh.Link, &platform, &status, &sh.CreatedAt); err != nil {
		return nil, err
	}
	sh.Platform = domain.ShortPlatform(platform)
	sh.Status = domain.ShortStatus(status)
	return &sh, nil
}
