package domain

import "time"

// TrendMetrics holds the platform-specific counters of a trend row.
// YouTube fills views/likes/comments, Twitch fills viewers/language.
type TrendMetrics struct {
	Views    int64  `json:"views,omitempty"`
	Likes    int64  `json:"likes,omitempty"`
	Comments int64  `json:"comments,omitempty"`
	Viewers  int64  `json:"viewers,omitempty"`
	Language string `json:"language,omitempty"`
}

// Audience returns views when present, otherwise live viewers.
func (m TrendMetrics) Audience() int64 {
	if m.Views > 0 {
		return m.Views
	}
	return m.Viewers
}

// TrendItem is a row of the trends cache, keyed by (platform, external_id).
// Read-only from the dashboard's perspective.
type TrendItem struct {
	ID           string       // deterministic, see idhash.ComputeTrendID
	Platform     Platform     // youtube | twitch
	ExternalID   string       // platform video or stream id
	Title        string
	Description  string
	ChannelTitle string
	ThumbnailURL string
	URL          string       // may be empty, see PlatformDescriptor.WatchURL
	Category     string
	Metrics      TrendMetrics // stored as JSON
	TrendScore   float64      // platform-specific popularity score
	Region       string       // ISO country code or GLOBAL
	PublishedAt  time.Time
	LastUpdated  time.Time // set by ingestion on every upsert
}

// TrendQuery selects trend rows for one platform.
type TrendQuery struct {
	Platform Platform
	// Region is applied only when non-empty.
	Region string
	Limit  int
}

// TrendSnapshot is a point of trend score history.
type TrendSnapshot struct {
	TrendID    string
	Platform   Platform
	ExternalID string
	TrendScore float64
	Audience   int64
	CapturedAt time.Time
}
