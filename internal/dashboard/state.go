// Package dashboard holds the per-operator application state: filters,
// pagination and the cached video list, with derived views computed as pure
// functions of that state.
package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/triage"
)

// View selects which list the dashboard shows.
type View string

const (
	ViewInbox      View = "INBOX"
	ViewRepository View = "REPOSITORY"
)

// SearchMode selects the ordering of the visible list.
type SearchMode string

const (
	// SearchGeneral orders by publish date, newest first.
	SearchGeneral SearchMode = "GENERAL"
	// SearchTrending orders by trend score, highest first.
	SearchTrending SearchMode = "TRENDING"
)

// Period is the publish window chosen in the header. It is carried with the
// state and triggers a refetch when changed.
type Period string

const (
	PeriodDay     Period = "24h"
	PeriodWeek    Period = "7d"
	PeriodMonth   Period = "30d"
	PeriodQuarter Period = "90d"
)

const (
	// DefaultRegion is the region of a new session.
	DefaultRegion = "US"
	// PageStep is how many items "load more" adds per platform.
	PageStep = triage.DefaultLimit
)

// Notice is a user-visible, non-fatal message.
type Notice struct {
	Kind    string `json:"kind"` // error | info
	Message string `json:"message"`
}

// State is the explicit application state of one operator session.
type State struct {
	View       View                    `json:"view"`
	Search     string                  `json:"search"`
	Platform   domain.Platform         `json:"platform,omitempty"` // empty means all
	Category   string                  `json:"category,omitempty"` // empty means all
	SearchMode SearchMode              `json:"searchMode"`
	Period     Period                  `json:"period"`
	Region     string                  `json:"region"` // ISO code or GLOBAL
	Limits     map[domain.Platform]int `json:"limits"`
	Videos     []domain.Video          `json:"-"`
	Notice     *Notice                 `json:"notice,omitempty"`
}

// NewState returns the initial state: inbox, YouTube, general ordering.
func NewState() State {
	limits := make(map[domain.Platform]int, len(domain.Platforms))
	for _, d := range domain.Platforms {
		limits[d.Platform] = triage.DefaultLimit
	}
	return State{
		View:       ViewInbox,
		Platform:   domain.PlatformYouTube,
		SearchMode: SearchGeneral,
		Period:     PeriodWeek,
		Region:     DefaultRegion,
		Limits:     limits,
	}
}

// clone copies the slices and maps so callers can mutate freely.
func (s State) clone() State {
	c := s
	c.Limits = make(map[domain.Platform]int, len(s.Limits))
	for k, v := range s.Limits {
		c.Limits[k] = v
	}
	c.Videos = append([]domain.Video(nil), s.Videos...)
	if s.Notice != nil {
		n := *s.Notice
		c.Notice = &n
	}
	return c
}

// More returns the state with one more page requested for platform.
func (s State) More(p domain.Platform) State {
	c := s.clone()
	limit := c.Limits[p]
	if limit <= 0 {
		limit = triage.DefaultLimit
	}
	c.Limits[p] = limit + PageStep
	return c
}

// InboxQuery derives the trend query of the inbox view.
func InboxQuery(s State) triage.InboxQuery {
	q := triage.InboxQuery{Limits: make(map[domain.Platform]int, len(s.Limits))}
	if s.Platform != "" {
		q.Platforms = []domain.Platform{s.Platform}
	}
	if s.Region != domain.RegionGlobal {
		q.Region = s.Region
	}
	for k, v := range s.Limits {
		q.Limits[k] = v
	}
	return q
}

// Visible returns the filtered and ordered videos of s. The cached list is
// not modified.
func Visible(s State) []domain.Video {
	search := strings.ToLower(strings.TrimSpace(s.Search))

	out := make([]domain.Video, 0, len(s.Videos))
	for _, v := range s.Videos {
		if search != "" &&
			!strings.Contains(strings.ToLower(v.Title), search) &&
			!strings.Contains(strings.ToLower(v.Channel), search) {
			continue
		}
		if s.Platform != "" && v.Platform != s.Platform {
			continue
		}
		if s.Category != "" && v.Category != s.Category {
			continue
		}
		if !regionMatches(v, s.Region) {
			continue
		}
		out = append(out, v)
	}

	if s.SearchMode == SearchTrending {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Growth > out[j].Growth })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	}
	return out
}

func regionMatches(v domain.Video, region string) bool {
	if region == "" || region == domain.RegionGlobal {
		return true
	}
	if d, ok := domain.Describe(v.Platform); ok && !d.SupportsRegionFilter {
		return true
	}
	return v.Region == "" || v.Region == domain.RegionGlobal || v.Region == region
}

// Patch is a partial update of the filter fields. Nil fields are kept.
type Patch struct {
	View       *View            `json:"view,omitempty"`
	Search     *string          `json:"search,omitempty"`
	Platform   *domain.Platform `json:"platform,omitempty"`
	Category   *string          `json:"category,omitempty"`
	SearchMode *SearchMode      `json:"searchMode,omitempty"`
	Period     *Period          `json:"period,omitempty"`
	Region     *string          `json:"region,omitempty"`
}

// Apply validates p and returns the patched state. refetch reports whether
// the cached list no longer matches the query and must be reloaded; search
// and category are client-side filters only.
func (s State) Apply(p Patch) (next State, refetch bool, err error) {
	next = s.clone()

	if p.View != nil {
		if *p.View != ViewInbox && *p.View != ViewRepository {
			return s, false, fmt.Errorf("view %q: %w", *p.View, domain.ErrInvalidInput)
		}
		refetch = refetch || next.View != *p.View
		next.View = *p.View
	}
	if p.Search != nil {
		next.Search = *p.Search
	}
	if p.Platform != nil {
		if *p.Platform != "" && !p.Platform.IsValid() {
			return s, false, fmt.Errorf("platform %q: %w", *p.Platform, domain.ErrInvalidInput)
		}
		refetch = refetch || next.Platform != *p.Platform
		next.Platform = *p.Platform
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.SearchMode != nil {
		if *p.SearchMode != SearchGeneral && *p.SearchMode != SearchTrending {
			return s, false, fmt.Errorf("search mode %q: %w", *p.SearchMode, domain.ErrInvalidInput)
		}
		refetch = refetch || next.SearchMode != *p.SearchMode
		next.SearchMode = *p.SearchMode
	}
	if p.Period != nil {
		switch *p.Period {
		case PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter:
		default:
			return s, false, fmt.Errorf("period %q: %w", *p.Period, domain.ErrInvalidInput)
		}
		refetch = refetch || next.Period != *p.Period
		next.Period = *p.Period
	}
	if p.Region != nil {
		region := strings.ToUpper(strings.TrimSpace(*p.Region))
		if region == "" {
			region = domain.RegionGlobal
		}
		refetch = refetch || next.Region != region
		next.Region = region
	}
	return next, refetch, nil
}
