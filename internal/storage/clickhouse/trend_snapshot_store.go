package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// TrendSnapshotStore implements storage.TrendSnapshotStore using ClickHouse.
type TrendSnapshotStore struct {
	conn *Conn
}

// NewTrendSnapshotStore creates a new TrendSnapshotStore.
func NewTrendSnapshotStore(conn *Conn) *TrendSnapshotStore {
	return &TrendSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TrendSnapshotStore = (*TrendSnapshotStore)(nil)

// InsertBulk appends snapshots in a single batch.
// History is append-only; repeated captures of the same trend are kept.
func (s *TrendSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.TrendSnapshot) (err error) {
	if len(snapshots) == 0 {
		return nil
	}
	for _, sn := range snapshots {
		if sn == nil || sn.TrendID == "" {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	defer func() { observability.RecordDBQuery("clickhouse", "snapshot_insert", time.Since(start).Seconds(), err) }()

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trend_snapshots (
			trend_id, platform, external_id, trend_score, audience, captured_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sn := range snapshots {
		err = batch.Append(
			sn.TrendID, string(sn.Platform), sn.ExternalID,
			sn.TrendScore, sn.Audience, sn.CapturedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTrendID retrieves snapshots captured at or after since, ordered by captured_at ASC.
func (s *TrendSnapshotStore) GetByTrendID(ctx context.Context, trendID string, since time.Time) ([]*domain.TrendSnapshot, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT trend_id, platform, external_id, trend_score, audience, captured_at
		FROM trend_snapshots
		WHERE trend_id = ? AND captured_at >= ?
		ORDER BY captured_at ASC
	`, trendID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query trend snapshots: %w", err)
	}
	defer rows.Close()

	var result []*domain.TrendSnapshot
	for rows.Next() {
		var (
			sn       domain.TrendSnapshot
			platform string
		)
		if err := rows.Scan(&sn.TrendID, &platform, &sn.ExternalID, &sn.TrendScore, &sn.Audience, &sn.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan trend snapshot: %w", err)
		}
		sn.Platform = domain.Platform(platform)
		result = append(result, &sn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend snapshots: %w", err)
	}
	return result, nil
}
