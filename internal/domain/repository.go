package domain

import "time"

// RepositoryStatus is the persisted status of a repository row.
type RepositoryStatus string

const (
	RepositoryApproved   RepositoryStatus = "approved"
	RepositoryInProgress RepositoryStatus = "in_progress"
	RepositoryFinished   RepositoryStatus = "finished"
	RepositoryIgnored    RepositoryStatus = "ignored"
	RepositoryDeleted    RepositoryStatus = "deleted"
)

// IsValid checks if the status is a known value.
func (s RepositoryStatus) IsValid() bool {
	switch s {
	case RepositoryApproved, RepositoryInProgress, RepositoryFinished, RepositoryIgnored, RepositoryDeleted:
		return true
	}
	return false
}

// Listed reports whether rows with this status appear in the repository view.
func (s RepositoryStatus) Listed() bool {
	return s != RepositoryIgnored && s != RepositoryDeleted
}

// RepositoryEntry is an operator-owned record referencing a trend item.
// At most one entry exists per trend.
type RepositoryEntry struct {
	ID      string           // synthetic UUID
	TrendID string           // unique
	Status  RepositoryStatus // approved | in_progress | finished | ignored | deleted
	SavedAt time.Time
}

// ShortPlatform is the destination of a short-form clip.
type ShortPlatform string

const (
	ShortYouTube   ShortPlatform = "YouTube Shorts"
	ShortTikTok    ShortPlatform = "TikTok"
	ShortInstagram ShortPlatform = "Instagram Reels"
)

// IsValid checks if the platform is a known value.
func (p ShortPlatform) IsValid() bool {
	return p == ShortYouTube || p == ShortTikTok || p == ShortInstagram
}

// ShortStatus is the publication status of a clip.
type ShortStatus string

const (
	ShortDraft     ShortStatus = "DRAFT"
	ShortPublished ShortStatus = "PUBLISHED"
)

// IsValid checks if the status is a known value.
func (s ShortStatus) IsValid() bool {
	return s == ShortDraft || s == ShortPublished
}

// Short is a clip derived from a repository item.
type Short struct {
	ID           string // synthetic UUID
	RepositoryID string // owning repository entry
	Link         string
	Platform     ShortPlatform
	Status       ShortStatus
	CreatedAt    time.Time
}
