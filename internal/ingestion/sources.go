// Package ingestion pulls trending videos and streams from upstream
// platforms and upserts them into the trends cache.
package ingestion

import (
	"context"
	"errors"
	"sort"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
)

// ErrSourceDisabled is returned by sources that lack credentials.
var ErrSourceDisabled = errors.New("source disabled: missing credentials")

// TrendSource provides trend rows of one platform.
type TrendSource interface {
	// Platform returns the platform this source feeds.
	Platform() domain.Platform
	// Enabled reports whether the source has the credentials it needs.
	Enabled() bool
	// Fetch returns up to limit rows. Items may be unordered.
	Fetch(ctx context.Context, limit int) ([]*domain.TrendItem, error)
}

// SortTrends orders items by trend_score DESC, external_id ASC.
func SortTrends(items []*domain.TrendItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].TrendScore != items[j].TrendScore {
			return items[i].TrendScore > items[j].TrendScore
		}
		return items[i].ExternalID < items[j].ExternalID
	})
}

// dedupe keeps the first occurrence of every external id.
func dedupe(items []*domain.TrendItem) []*domain.TrendItem {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it.ExternalID] {
			continue
		}
		seen[it.ExternalID] = true
		out = append(out, it)
	}
	return out
}
