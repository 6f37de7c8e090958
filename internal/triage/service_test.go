package triage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/events"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/idhash"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/storage/memory"
)

var testNow = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

// countingRepo records every call reaching the repository store.
type countingRepo struct {
	storage.RepositoryStore
	mu    sync.Mutex
	calls []string
}

func (c *countingRepo) record(op string) {
	c.mu.Lock()
	c.calls = append(c.calls, op)
	c.mu.Unlock()
}

func (c *countingRepo) Insert(ctx context.Context, e *domain.RepositoryEntry) error {
	c.record("Insert")
	return c.RepositoryStore.Insert(ctx, e)
}

func (c *countingRepo) UpdateStatus(ctx context.Context, id string, s domain.RepositoryStatus) error {
	c.record("UpdateStatus")
	return c.RepositoryStore.UpdateStatus(ctx, id, s)
}

func (c *countingRepo) Delete(ctx context.Context, id string) error {
	c.record("Delete")
	return c.RepositoryStore.Delete(ctx, id)
}

func (c *countingRepo) mutations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ev events.Event) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

type fixture struct {
	svc    *Service
	trends *memory.TrendStore
	repo   *countingRepo
	shorts *memory.ShortStore
	pub    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		trends: memory.NewTrendStore(),
		repo:   &countingRepo{RepositoryStore: memory.NewRepositoryStore()},
		shorts: memory.NewShortStore(),
		pub:    &recordingPublisher{},
	}

	seq := 0
	f.svc = NewService(Options{
		TrendStore:      f.trends,
		RepositoryStore: f.repo,
		ShortStore:      f.shorts,
		Publisher:       f.pub,
		Logger:          log.New(io.Discard, "", 0),
		Now:             func() time.Time { return testNow },
		NewID: func() string {
			seq++
			return fmt.Sprintf("00000000-0000-0000-0000-%012d", seq)
		},
	})
	return f
}

func (f *fixture) seed(t *testing.T, p domain.Platform, externalID, region string, score float64) string {
	t.Helper()
	require.NoError(t, f.trends.Upsert(context.Background(), []*domain.TrendItem{{
		Platform:     p,
		ExternalID:   externalID,
		Title:        "title " + externalID,
		ChannelTitle: "chan",
		Region:       region,
		TrendScore:   score,
		PublishedAt:  testNow.Add(-time.Hour),
	}}))
	return idhash.ComputeTrendID(p, externalID)
}

func trendRef(id string) domain.VideoRef {
	return domain.VideoRef{Origin: domain.OriginTrend, ID: id}
}

func repoRef(id string) domain.VideoRef {
	return domain.VideoRef{Origin: domain.OriginRepository, ID: id}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.TriageState
		want     bool
	}{
		{domain.StatePending, domain.StateApproved, true},
		{domain.StatePending, domain.StateIgnored, true},
		{domain.StatePending, domain.StateInProgress, false},
		{domain.StateApproved, domain.StateInProgress, true},
		{domain.StateInProgress, domain.StateFinished, true},
		{domain.StateFinished, domain.StateApproved, true},
		{domain.StateFinished, domain.StatePending, false},
		{domain.StateApproved, domain.StateIgnored, false},
		{domain.StateIgnored, domain.StateApproved, false},
		{domain.StateIgnored, domain.StateIgnored, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestInbox_RegionOnlyForCapablePlatforms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, domain.PlatformYouTube, "br1", "BR", 50)
	f.seed(t, domain.PlatformYouTube, "us1", "US", 90)
	f.seed(t, domain.PlatformTwitch, "tw1", domain.RegionGlobal, 10)

	videos, err := f.svc.Inbox(ctx, InboxQuery{Region: "BR"})
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, domain.PlatformYouTube, videos[0].Platform)
	assert.Equal(t, "BR", videos[0].Region)
	assert.Equal(t, domain.PlatformTwitch, videos[1].Platform)
	assert.Equal(t, domain.StatePending, videos[1].Status)
}

func TestInbox_ExcludesSavedAndHonoursLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	top := f.seed(t, domain.PlatformYouTube, "a", "BR", 30)
	f.seed(t, domain.PlatformYouTube, "b", "BR", 20)
	f.seed(t, domain.PlatformYouTube, "c", "BR", 10)

	_, err := f.svc.Approve(ctx, trendRef(top))
	require.NoError(t, err)

	videos, err := f.svc.Inbox(ctx, InboxQuery{
		Platforms: []domain.Platform{domain.PlatformYouTube},
		Limits:    map[domain.Platform]int{domain.PlatformYouTube: 2},
	})
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "title b", videos[0].Title)
	assert.Equal(t, "title c", videos[1].Title)
}

func TestInbox_UnknownPlatform(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Inbox(context.Background(), InboxQuery{Platforms: []domain.Platform{"vimeo"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApprove_PendingCreatesEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, domain.PlatformYouTube, "v1", "BR", 10)

	v, err := f.svc.Approve(ctx, trendRef(id))
	require.NoError(t, err)

	assert.Equal(t, domain.OriginRepository, v.Ref.Origin)
	assert.Equal(t, domain.StateApproved, v.Status)
	require.NotNil(t, v.SavedAt)
	assert.Equal(t, testNow, *v.SavedAt)

	entry, err := f.repo.GetByTrendID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RepositoryApproved, entry.Status)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, events.TypeApproved, f.pub.events[0].Type)
}

func TestApprove_DuplicateLeavesStoresUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, domain.PlatformYouTube, "v1", "BR", 10)

	first, err := f.svc.Approve(ctx, trendRef(id))
	require.NoError(t, err)
	require.NoError(t, f.svc.UpdateStatus(ctx, first.Ref.ID, domain.StateInProgress))
	before := f.repo.mutations()

	_, err = f.svc.Approve(ctx, trendRef(id))
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
	assert.Equal(t, before, f.repo.mutations())

	entry, err := f.repo.GetByTrendID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RepositoryInProgress, entry.Status)

	trend, err := f.trends.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 10.0, trend.TrendScore)
}

func TestApprove_MissingTrend(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Approve(context.Background(), trendRef("nope"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.repo.mutations())
}

func TestIgnore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, domain.PlatformTwitch, "s1", domain.RegionGlobal, 10)

	v, err := f.svc.Ignore(ctx, trendRef(id))
	require.NoError(t, err)
	assert.Equal(t, domain.StateIgnored, v.Status)

	// Ignored items leave the inbox and stay out of the repository view.
	inbox, err := f.svc.Inbox(ctx, InboxQuery{})
	require.NoError(t, err)
	assert.Empty(t, inbox)

	repo, err := f.svc.Repository(ctx)
	require.NoError(t, err)
	assert.Empty(t, repo)

	_, err = f.svc.Approve(ctx, repoRef(v.Ref.ID))
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)

	_, err = f.svc.Ignore(ctx, repoRef(v.Ref.ID))
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, domain.PlatformYouTube, "v1", "BR", 10)

	v, err := f.svc.Approve(ctx, trendRef(id))
	require.NoError(t, err)
	repoID := v.Ref.ID

	require.NoError(t, f.svc.UpdateStatus(ctx, repoID, domain.StateFinished))
	require.NoError(t, f.svc.UpdateStatus(ctx, repoID, domain.StateInProgress))

	// Same state is a no-op and does not reach the store.
	before := len(f.repo.mutations())
	require.NoError(t, f.svc.UpdateStatus(ctx, repoID, domain.StateInProgress))
	assert.Len(t, f.repo.mutations(), before)

	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, repoID, domain.StatePending), domain.ErrUnsupportedOperation)
	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, repoID, "BOGUS"), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, "missing", domain.StateFinished), domain.ErrNotFound)

	back, err := f.svc.Approve(ctx, repoRef(repoID))
	require.NoError(t, err)
	assert.Equal(t, domain.StateApproved, back.Status)
}

func TestDelete_InboxItemNeverReachesStore(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, domain.PlatformYouTube, "v1", "BR", 10)

	err := f.svc.Delete(context.Background(), trendRef(id))
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	assert.Empty(t, f.repo.mutations())
	assert.Empty(t, f.pub.events)
}

func TestDelete_RepositoryItemIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, domain.PlatformYouTube, "v1", "BR", 10)

	v, err := f.svc.Approve(ctx, trendRef(id))
	require.NoError(t, err)
	_, err = f.svc.AddShort(ctx, v.Ref.ID, ShortInput{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, v.Ref))
	require.NoError(t, f.svc.Delete(ctx, v.Ref))

	_, err = f.repo.GetByID(ctx, v.Ref.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	left, err := f.shorts.ListByRepositoryID(ctx, v.Ref.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	// The trend reappears in the inbox once its row is gone.
	inbox, err := f.svc.Inbox(ctx, InboxQuery{Platforms: []domain.Platform{domain.PlatformYouTube}})
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}

func TestRepository_ListsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, domain.PlatformYouTube, "a", "BR", 10)
	b := f.seed(t, domain.PlatformTwitch, "b", domain.RegionGlobal, 10)

	_, err := f.svc.Approve(ctx, trendRef(a))
	require.NoError(t, err)
	f.svc.now = func() time.Time { return testNow.Add(time.Minute) }
	_, err = f.svc.Approve(ctx, trendRef(b))
	require.NoError(t, err)

	videos, err := f.svc.Repository(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, b, videos[0].TrendID)
	assert.Equal(t, "https://www.twitch.tv/chan", videos[0].URL)
	assert.Equal(t, a, videos[1].TrendID)
}

func TestShorts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(t, domain.PlatformYouTube, "v1", "BR", 10)

	v, err := f.svc.Approve(ctx, trendRef(id))
	require.NoError(t, err)

	sh, err := f.svc.AddShort(ctx, v.Ref.ID, ShortInput{})
	require.NoError(t, err)
	assert.Equal(t, DefaultShortLink, sh.Link)
	assert.Equal(t, domain.ShortYouTube, sh.Platform)
	assert.Equal(t, domain.ShortDraft, sh.Status)

	_, err = f.svc.AddShort(ctx, v.Ref.ID, ShortInput{Link: "https://tiktok.com/x", Platform: domain.ShortTikTok})
	require.NoError(t, err)

	_, err = f.svc.AddShort(ctx, v.Ref.ID, ShortInput{Platform: "Vimeo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.AddShort(ctx, "missing", ShortInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.svc.UpdateShortStatus(ctx, sh.ID, domain.ShortPublished))
	assert.ErrorIs(t, f.svc.UpdateShortStatus(ctx, sh.ID, "LIVE"), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateShortStatus(ctx, "missing", domain.ShortDraft), domain.ErrNotFound)

	list, err := f.svc.Shorts(ctx, v.Ref.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.ShortPublished, list[0].Status)
}

func TestValidateRef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, domain.VideoRef{Origin: "other", ID: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = f.svc.Delete(ctx, domain.VideoRef{Origin: domain.OriginRepository, ID: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type failingTrends struct {
	storage.TrendStore
}

func (failingTrends) List(context.Context, domain.TrendQuery) ([]*domain.TrendItem, error) {
	return nil, errors.New("connection refused")
}

func TestInbox_UpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.svc.trends = failingTrends{TrendStore: f.trends}

	_, err := f.svc.Inbox(context.Background(), InboxQuery{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
