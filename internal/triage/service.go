package triage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/events"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/observability"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
)

// DefaultLimit is the per-platform inbox page size.
const DefaultLimit = 24

// Placeholder values for a new short.
const (
	DefaultShortLink     = "https://link.pendente.com"
	DefaultShortPlatform = domain.ShortYouTube
)

// Publisher receives successful mutations.
type Publisher interface {
	Publish(events.Event)
}

// Service runs triage operations against the trend source and the
// repository store.
type Service struct {
	trends    storage.TrendStore
	repo      storage.RepositoryStore
	shorts    storage.ShortStore
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
}

// Options for creating Service.
type Options struct {
	// Required stores
	TrendStore      storage.TrendStore
	RepositoryStore storage.RepositoryStore
	ShortStore      storage.ShortStore

	// Optional
	Publisher Publisher
	Logger    *log.Logger
	Now       func() time.Time
	NewID     func() string
}

// NewService creates a new Service.
func NewService(opts Options) *Service {
	s := &Service{
		trends:    opts.TrendStore,
		repo:      opts.RepositoryStore,
		shorts:    opts.ShortStore,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.logger == nil {
		s.logger = log.New(os.Stdout, "[triage] ", log.LstdFlags|log.Lshortfile)
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// InboxQuery selects the inbox page.
type InboxQuery struct {
	// Platforms to fetch; empty means every known platform.
	Platforms []domain.Platform
	// Region applies only to platforms that support a region filter.
	Region string
	// Limits per platform; missing entries use DefaultLimit.
	Limits map[domain.Platform]int
}

// ShortInput carries the optional fields of a new short.
type ShortInput struct {
	Link     string               `json:"link"`
	Platform domain.ShortPlatform `json:"platform"`
	Status   domain.ShortStatus   `json:"status"`
}

// Inbox returns pending trends of each platform, score-ordered, excluding
// trends that already have a repository row in any status. Platforms are
// fetched concurrently and returned in descriptor order.
func (s *Service) Inbox(ctx context.Context, q InboxQuery) ([]domain.Video, error) {
	platforms := q.Platforms
	if len(platforms) == 0 {
		for _, d := range domain.Platforms {
			platforms = append(platforms, d.Platform)
		}
	}

	descriptors := make([]domain.PlatformDescriptor, len(platforms))
	for i, p := range platforms {
		d, ok := domain.Describe(p)
		if !ok {
			return nil, fmt.Errorf("platform %q: %w", p, domain.ErrInvalidInput)
		}
		descriptors[i] = d
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list repository", err)
	}
	saved := make(map[string]bool, len(entries))
	for _, e := range entries {
		saved[e.TrendID] = true
	}

	results := make([][]*domain.TrendItem, len(platforms))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range descriptors {
		limit := q.Limits[d.Platform]
		if limit <= 0 {
			limit = DefaultLimit
		}
		// Over-fetch by the number of saved rows so exclusion still fills the page.
		tq := domain.TrendQuery{Platform: d.Platform, Limit: limit + len(saved)}
		if d.SupportsRegionFilter {
			tq.Region = q.Region
		}

		g.Go(func() error {
			items, err := s.trends.List(gctx, tq)
			if err != nil {
				return storeErr("list "+string(tq.Platform)+" trends", err)
			}
			results[i] = truncate(excludeSaved(items, saved), limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var videos []domain.Video
	for _, items := range results {
		for _, t := range items {
			if v, ok := domain.NormalizeVideo(domain.VideoSource{Trend: t}); ok {
				videos = append(videos, v)
			}
		}
	}
	return videos, nil
}

// Repository returns listed repository items joined with their trends,
// newest first. Rows whose trend is gone are skipped.
func (s *Service) Repository(ctx context.Context) ([]domain.Video, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list repository", err)
	}

	var listed []*domain.RepositoryEntry
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Status.Listed() {
			listed = append(listed, e)
			ids = append(ids, e.TrendID)
		}
	}
	if len(listed) == 0 {
		return nil, nil
	}

	trends, err := s.trends.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("load repository trends", err)
	}

	videos := make([]domain.Video, 0, len(listed))
	for _, e := range listed {
		t, ok := trends[e.TrendID]
		if !ok {
			s.logger.Printf("repository entry %s references missing trend %s", e.ID, e.TrendID)
			continue
		}
		if v, ok := domain.NormalizeVideo(domain.VideoSource{Trend: t, Entry: e}); ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// Approve saves an inbox item to the repository, or moves a repository item
// back to NOT_STARTED. Approving an inbox item that already has a row fails
// with ErrDuplicateEntry and changes nothing.
func (s *Service) Approve(ctx context.Context, ref domain.VideoRef) (v domain.Video, err error) {
	defer func() { observability.RecordTriageMutation("approve", resultLabel(err)) }()

	if err := validateRef(ref); err != nil {
		return domain.Video{}, err
	}

	if ref.Origin == domain.OriginRepository {
		entry, err := s.transition(ctx, ref.ID, domain.StateApproved)
		if err != nil {
			return domain.Video{}, err
		}
		return s.videoFor(ctx, entry)
	}

	return s.save(ctx, ref.ID, domain.RepositoryApproved, events.TypeApproved)
}

// Ignore dismisses an inbox item by saving it with the ignored status.
// Repository items cannot be ignored.
func (s *Service) Ignore(ctx context.Context, ref domain.VideoRef) (v domain.Video, err error) {
	defer func() { observability.RecordTriageMutation("ignore", resultLabel(err)) }()

	if err := validateRef(ref); err != nil {
		return domain.Video{}, err
	}
	if ref.Origin != domain.OriginTrend {
		return domain.Video{}, fmt.Errorf("ignore repository item: %w", domain.ErrUnsupportedOperation)
	}

	return s.save(ctx, ref.ID, domain.RepositoryIgnored, events.TypeIgnored)
}

// UpdateStatus moves a repository item between NOT_STARTED, IN_PROGRESS and
// FINISHED. Setting the current state again is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, repositoryID string, state domain.TriageState) (err error) {
	defer func() { observability.RecordTriageMutation("update_status", resultLabel(err)) }()

	if strings.TrimSpace(repositoryID) == "" {
		return fmt.Errorf("repository id required: %w", domain.ErrInvalidInput)
	}
	if !working[state] {
		if state.IsValid() {
			return fmt.Errorf("cannot set %s on a repository item: %w", state, domain.ErrUnsupportedOperation)
		}
		return fmt.Errorf("unknown state %q: %w", state, domain.ErrInvalidInput)
	}

	_, err = s.transition(ctx, repositoryID, state)
	return err
}

// Delete hard-deletes a repository item and its shorts. Inbox items cannot
// be deleted; the store is not touched for them. Deleting a row that is
// already gone succeeds.
func (s *Service) Delete(ctx context.Context, ref domain.VideoRef) (err error) {
	defer func() { observability.RecordTriageMutation("delete", resultLabel(err)) }()

	if err := validateRef(ref); err != nil {
		return err
	}
	if !CanDelete(ref.Origin) {
		return fmt.Errorf("delete inbox item: %w", domain.ErrUnsupportedOperation)
	}

	if err := s.shorts.DeleteByRepositoryID(ctx, ref.ID); err != nil {
		return storeErr("delete shorts", err)
	}
	if err := s.repo.Delete(ctx, ref.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storeErr("delete repository entry", err)
	}

	s.publish(events.Event{Type: events.TypeDeleted, Ref: ref})
	return nil
}

// AddShort attaches a short to a repository item, filling placeholder
// defaults for missing fields.
func (s *Service) AddShort(ctx context.Context, repositoryID string, in ShortInput) (sh *domain.Short, err error) {
	defer func() { observability.RecordTriageMutation("add_short", resultLabel(err)) }()

	if in.Link == "" {
		in.Link = DefaultShortLink
	}
	if in.Platform == "" {
		in.Platform = DefaultShortPlatform
	}
	if in.Status == "" {
		in.Status = domain.ShortDraft
	}
	if !in.Platform.IsValid() {
		return nil, fmt.Errorf("short platform %q: %w", in.Platform, domain.ErrInvalidInput)
	}
	if !in.Status.IsValid() {
		return nil, fmt.Errorf("short status %q: %w", in.Status, domain.ErrInvalidInput)
	}

	if _, err := s.repo.GetByID(ctx, repositoryID); err != nil {
		return nil, storeErr("get repository entry", err)
	}

	sh = &domain.Short{
		ID:           s.newID(),
		RepositoryID: repositoryID,
		Link:         in.Link,
		Platform:     in.Platform,
		Status:       in.Status,
		CreatedAt:    s.now(),
	}
	if err := s.shorts.Insert(ctx, sh); err != nil {
		return nil, storeErr("insert short", err)
	}

	s.publish(events.Event{Type: events.TypeShortAdded, Ref: domain.VideoRef{Origin: domain.OriginRepository, ID: repositoryID}})
	return sh, nil
}

// UpdateShortStatus sets the publication status of a short.
func (s *Service) UpdateShortStatus(ctx context.Context, shortID string, status domain.ShortStatus) (err error) {
	defer func() { observability.RecordTriageMutation("update_short", resultLabel(err)) }()

	if !status.IsValid() {
		return fmt.Errorf("short status %q: %w", status, domain.ErrInvalidInput)
	}

	sh, err := s.shorts.GetByID(ctx, shortID)
	if err != nil {
		return storeErr("get short", err)
	}
	if sh.Status == status {
		return nil
	}
	if err := s.shorts.UpdateStatus(ctx, shortID, status); err != nil {
		return storeErr("update short status", err)
	}

	s.publish(events.Event{Type: events.TypeShortUpdated, Ref: domain.VideoRef{Origin: domain.OriginRepository, ID: sh.RepositoryID}})
	return nil
}

// Shorts lists the shorts of a repository item, oldest first.
func (s *Service) Shorts(ctx context.Context, repositoryID string) ([]*domain.Short, error) {
	if _, err := s.repo.GetByID(ctx, repositoryID); err != nil {
		return nil, storeErr("get repository entry", err)
	}
	list, err := s.shorts.ListByRepositoryID(ctx, repositoryID)
	if err != nil {
		return nil, storeErr("list shorts", err)
	}
	return list, nil
}

// save inserts a repository row for an inbox trend.
func (s *Service) save(ctx context.Context, trendID string, status domain.RepositoryStatus, eventType string) (domain.Video, error) {
	trend, err := s.trends.GetByID(ctx, trendID)
	if err != nil {
		return domain.Video{}, storeErr("get trend", err)
	}

	existing, err := s.repo.GetByTrendID(ctx, trendID)
	switch {
	case err == nil:
		return domain.Video{}, fmt.Errorf("trend %s already saved as %s: %w", trendID, existing.ID, domain.ErrDuplicateEntry)
	case !errors.Is(err, storage.ErrNotFound):
		return domain.Video{}, storeErr("get repository entry", err)
	}

	entry := &domain.RepositoryEntry{
		ID:      s.newID(),
		TrendID: trendID,
		Status:  status,
		SavedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return domain.Video{}, storeErr("insert repository entry", err)
	}

	v, _ := domain.NormalizeVideo(domain.VideoSource{Trend: trend, Entry: entry})
	s.publish(events.Event{Type: eventType, Ref: v.Ref, Status: v.Status})
	return v, nil
}

// transition validates and applies a state change on a repository row.
func (s *Service) transition(ctx context.Context, repositoryID string, to domain.TriageState) (*domain.RepositoryEntry, error) {
	entry, err := s.repo.GetByID(ctx, repositoryID)
	if err != nil {
		return nil, storeErr("get repository entry", err)
	}

	from := domain.StateFromRepository(entry.Status)
	if from == to {
		return entry, nil
	}
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("transition %s -> %s: %w", from, to, domain.ErrUnsupportedOperation)
	}

	if err := s.repo.UpdateStatus(ctx, repositoryID, to.RepositoryStatus()); err != nil {
		return nil, storeErr("update repository status", err)
	}
	entry.Status = to.RepositoryStatus()

	s.publish(events.Event{
		Type:   events.TypeStatusChanged,
		Ref:    domain.VideoRef{Origin: domain.OriginRepository, ID: repositoryID},
		Status: to,
	})
	return entry, nil
}

func (s *Service) videoFor(ctx context.Context, entry *domain.RepositoryEntry) (domain.Video, error) {
	trend, err := s.trends.GetByID(ctx, entry.TrendID)
	if err != nil {
		return domain.Video{}, storeErr("get trend", err)
	}
	v, _ := domain.NormalizeVideo(domain.VideoSource{Trend: trend, Entry: entry})
	return v, nil
}

func (s *Service) publish(ev events.Event) {
	if s.publisher == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	s.publisher.Publish(ev)
}

func validateRef(ref domain.VideoRef) error {
	if !ref.Origin.IsValid() {
		return fmt.Errorf("origin %q: %w", ref.Origin, domain.ErrInvalidInput)
	}
	if strings.TrimSpace(ref.ID) == "" {
		return fmt.Errorf("id required: %w", domain.ErrInvalidInput)
	}
	return nil
}

func excludeSaved(items []*domain.TrendItem, saved map[string]bool) []*domain.TrendItem {
	out := items[:0:0]
	for _, t := range items {
		if !saved[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func truncate(items []*domain.TrendItem, limit int) []*domain.TrendItem {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

// storeErr translates storage sentinels into the domain taxonomy.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicateEntry)
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, storage.ErrInvalidInput):
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUpstreamUnavailable, err)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrDuplicateEntry):
		return "duplicate"
	case errors.Is(err, domain.ErrUnsupportedOperation):
		return "unsupported"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return "error"
}
