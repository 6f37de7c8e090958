package domain

import "time"

// TriageState is the workflow state of a video as seen by the operator.
type TriageState string

const (
	StatePending    TriageState = "PENDING"
	StateApproved   TriageState = "NOT_STARTED"
	StateInProgress TriageState = "IN_PROGRESS"
	StateFinished   TriageState = "FINISHED"
	StateIgnored    TriageState = "IGNORED"
)

// IsValid checks if the state is a known value.
func (s TriageState) IsValid() bool {
	switch s {
	case StatePending, StateApproved, StateInProgress, StateFinished, StateIgnored:
		return true
	}
	return false
}

// RepositoryStatus maps a state to its persisted status.
// Pending has no repository row and maps to the empty status.
func (s TriageState) RepositoryStatus() RepositoryStatus {
	switch s {
	case StateApproved:
		return RepositoryApproved
	case StateInProgress:
		return RepositoryInProgress
	case StateFinished:
		return RepositoryFinished
	case StateIgnored:
		return RepositoryIgnored
	}
	return ""
}

// StateFromRepository maps a persisted status to a state.
func StateFromRepository(s RepositoryStatus) TriageState {
	switch s {
	case RepositoryInProgress:
		return StateInProgress
	case RepositoryFinished:
		return StateFinished
	case RepositoryIgnored, RepositoryDeleted:
		return StateIgnored
	}
	return StateApproved
}

// Origin tells where a video came from.
type Origin string

const (
	OriginTrend      Origin = "trend"
	OriginRepository Origin = "repository"
)

// IsValid checks if the origin is a known value.
func (o Origin) IsValid() bool {
	return o == OriginTrend || o == OriginRepository
}

// VideoRef identifies a video by origin. For OriginTrend the ID is the trend
// id, for OriginRepository it is the repository row id.
type VideoRef struct {
	Origin Origin `json:"origin"`
	ID     string `json:"id"`
}

// VideoSource is the tagged union of the two row shapes a Video is built from.
// Exactly one of Trend-only (inbox) or Trend+Entry (repository) is set.
type VideoSource struct {
	Trend *TrendItem
	Entry *RepositoryEntry
}

// Video is the unified view-model rendered by the dashboard.
type Video struct {
	Ref          VideoRef    `json:"ref"`
	TrendID      string      `json:"trendId"`
	Platform     Platform    `json:"platform"`
	Title        string      `json:"title"`
	Channel      string      `json:"channel"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	URL          string      `json:"url"`
	Category     string      `json:"category"`
	Views        int64       `json:"views"`
	Growth       float64     `json:"growth"`
	Region       string      `json:"region"`
	PublishedAt  time.Time   `json:"publishedAt"`
	Status       TriageState `json:"status"`
	SavedAt      *time.Time  `json:"savedAt,omitempty"`
}

// NormalizeVideo converts a trend row, optionally joined with its repository
// entry, into a Video. It returns false when src carries no trend.
func NormalizeVideo(src VideoSource) (Video, bool) {
	t := src.Trend
	if t == nil {
		return Video{}, false
	}

	url := t.URL
	if url == "" {
		if d, ok := Describe(t.Platform); ok {
			url = d.WatchURL(t.ExternalID, t.ChannelTitle)
		}
	}

	v := Video{
		Ref:          VideoRef{Origin: OriginTrend, ID: t.ID},
		TrendID:      t.ID,
		Platform:     t.Platform,
		Title:        t.Title,
		Channel:      t.ChannelTitle,
		ThumbnailURL: t.ThumbnailURL,
		URL:          url,
		Category:     t.Category,
		Views:        t.Metrics.Audience(),
		Growth:       t.TrendScore,
		Region:       t.Region,
		PublishedAt:  t.PublishedAt,
		Status:       StatePending,
	}

	if e := src.Entry; e != nil {
		saved := e.SavedAt
		v.Ref = VideoRef{Origin: OriginRepository, ID: e.ID}
		v.Status = StateFromRepository(e.Status)
		v.SavedAt = &saved
	}
	return v, true
}
