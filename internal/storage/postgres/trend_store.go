package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/idhash"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// TrendStore implements storage.TrendStore using PostgreSQL.
type TrendStore struct {
	pool *Pool
}

// NewTrendStore creates a new TrendStore.
func NewTrendStore(pool *Pool) *TrendStore {
	return &TrendStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TrendStore = (*TrendStore)(nil)

const trendColumns = `id, platform, external_id, title, description, channel_title, thumbnail_url,
	url, category, metrics, trend_score, region, published_at, last_updated`

// Upsert inserts or replaces items keyed by (platform, external_id) in one transaction.
func (s *TrendStore) Upsert(ctx context.Context, items []*domain.TrendItem) (err error) {
	if len(items) == 0 {
		return nil
	}
	for _, it := range items {
		if it == nil || it.ExternalID == "" || !it.Platform.IsValid() {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	defer func() { observability.RecordDBQuery("postgres", "trends_upsert", time.Since(start).Seconds(), err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trends_cache (` + trendColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (platform, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			channel_title = EXCLUDED.channel_title,
			thumbnail_url = EXCLUDED.thumbnail_url,
			url = EXCLUDED.url,
			category = EXCLUDED.category,
			metrics = EXCLUDED.metrics,
			trend_score = EXCLUDED.trend_score,
			region = EXCLUDED.region,
			published_at = EXCLUDED.published_at,
			last_updated = EXCLUDED.last_updated
	`

	for _, it := range items {
		metrics, err := json.Marshal(it.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}

		lastUpdated := it.LastUpdated
		if lastUpdated.IsZero() {
			lastUpdated = time.Now().UTC()
		}

		_, err = tx.Exec(ctx, query,
			idhash.ComputeTrendID(it.Platform, it.ExternalID),
			string(it.Platform),
			it.ExternalID,
			it.Title,
			it.Description,
			it.ChannelTitle,
			it.ThumbnailURL,
			it.URL,
			it.Category,
			metrics,
			it.TrendScore,
			it.Region,
			it.PublishedAt,
			lastUpdated,
		)
		if err != nil {
			return fmt.Errorf("upsert trend: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves a trend by its ID. Returns ErrNotFound if not exists.
func (s *TrendStore) GetByID(ctx context.Context, id string) (*domain.TrendItem, error) {
	query := `SELECT ` + trendColumns + ` FROM trends_cache WHERE id = $1`

	it, err := scanTrend(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trend by id: %w", err)
	}
	return it, nil
}

// GetByIDs retrieves the trends that exist among ids.
func (s *TrendStore) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.TrendItem, error) {
	result := make(map[string]*domain.TrendItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + trendColumns + ` FROM trends_cache WHERE id = ANY($1)`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query trends by ids: %w", err)
	}
	items, err := collectTrends(rows)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		result[it.ID] = it
	}
	return result, nil
}

// List retrieves trends of one platform ordered by trend_score DESC.
func (s *TrendStore) List(ctx context.Context, q domain.TrendQuery) (items []*domain.TrendItem, err error) {
	start := time.Now()
	defer func() { observability.RecordDBQuery("postgres", "trends_list", time.Since(start).Seconds(), err) }()

	var sb strings.Builder
	sb.WriteString(`SELECT ` + trendColumns + ` FROM trends_cache WHERE platform = $1`)
	args := []any{string(q.Platform)}

	if q.Region != "" {
		args = append(args, q.Region)
		sb.WriteString(fmt.Sprintf(" AND region = $%d", len(args)))
	}
	sb.WriteString(" ORDER BY trend_score DESC, id ASC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query trends: %w", err)
	}
	return collectTrends(rows)
}

func collectTrends(rows pgx.Rows) ([]*domain.TrendItem, error) {
	defer rows.Close()

	var result []*domain.TrendItem
	for rows.Next() {
		it, err := scanTrend(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trends: %w", err)
	}
	return result, nil
}

// scanTrend scans a single row into TrendItem.
func scanTrend(row pgx.Row) (*domain.TrendItem, error) {
	var (
		it       domain.TrendItem
		platform string
		metrics  []byte
	)

	err := row.Scan(
		&it.ID,
		&platform,
		&it.ExternalID,
		&it.Title,
		&it.Description,
		&it.ChannelTitle,
		&it.ThumbnailURL,
		&it.URL,
		&it.Category,
		&metrics,
		&it.TrendScore,
		&it.Region,
		&it.PublishedAt,
		&it.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	it.Platform = domain.Platform(platform)
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &it.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal metrics: %w", err)
		}
	}
	return &it, nil
}
