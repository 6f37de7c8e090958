package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/triage"
)

// Workflow is the part of triage.Service the controller drives.
type Workflow interface {
	Inbox(ctx context.Context, q triage.InboxQuery) ([]domain.Video, error)
	Repository(ctx context.Context) ([]domain.Video, error)
	Approve(ctx context.Context, ref domain.VideoRef) (domain.Video, error)
	Ignore(ctx context.Context, ref domain.VideoRef) (domain.Video, error)
	UpdateStatus(ctx context.Context, repositoryID string, state domain.TriageState) error
	Delete(ctx context.Context, ref domain.VideoRef) error
}

// Controller owns one session state. Mutations are applied to the cached
// list first and then sent to the workflow; a failure leaves the optimistic
// change in place and sets a notice, the next Refresh reconciles.
type Controller struct {
	workflow Workflow

	mu    sync.Mutex
	state State
}

// NewController creates a controller with the initial state.
func NewController(w Workflow) *Controller {
	return &Controller{workflow: w, state: NewState()}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Feed returns the visible videos and the pending notice.
func (c *Controller) Feed() ([]domain.Video, *Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state.clone()
	return Visible(s), s.Notice
}

// DismissNotice clears the pending notice.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	c.state.Notice = nil
	c.mu.Unlock()
}

// Apply patches the filters and reloads when the query changed.
func (c *Controller) Apply(ctx context.Context, p Patch) error {
	c.mu.Lock()
	next, refetch, err := c.state.Apply(p)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.mu.Unlock()

	if refetch {
		return c.Refresh(ctx)
	}
	return nil
}

// More requests one more page for platform and reloads.
func (c *Controller) More(ctx context.Context, p domain.Platform) error {
	if !p.IsValid() {
		return fmt.Errorf("platform %q: %w", p, domain.ErrInvalidInput)
	}
	c.mu.Lock()
	c.state = c.state.More(p)
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh reloads the cached list for the current view. On failure the
// previous list is kept and a notice is set.
func (c *Controller) Refresh(ctx context.Context) error {
	s := c.State()

	var (
		videos []domain.Video
		err    error
	)
	if s.View == ViewRepository {
		videos, err = c.workflow.Repository(ctx)
	} else {
		videos, err = c.workflow.Inbox(ctx, InboxQuery(s))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state.Notice = NoticeFor(err)
		return err
	}
	// Discard results of a query that was superseded meanwhile.
	if c.state.View == s.View {
		c.state.Videos = videos
		c.state.Notice = nil
	}
	return nil
}

// Approve saves an inbox item or resets a repository item to NOT_STARTED.
func (c *Controller) Approve(ctx context.Context, ref domain.VideoRef) error {
	c.mutate(func(s *State) {
		if ref.Origin == domain.OriginTrend {
			s.Videos = without(s.Videos, ref)
			return
		}
		setStatus(s.Videos, ref, domain.StateApproved)
	})
	_, err := c.workflow.Approve(ctx, ref)
	return c.settle(err, nil)
}

// Ignore dismisses an inbox item.
func (c *Controller) Ignore(ctx context.Context, ref domain.VideoRef) error {
	c.mutate(func(s *State) { s.Videos = without(s.Videos, ref) })
	_, err := c.workflow.Ignore(ctx, ref)
	return c.settle(err, nil)
}

// UpdateStatus moves a repository item between working states.
func (c *Controller) UpdateStatus(ctx context.Context, repositoryID string, state domain.TriageState) error {
	ref := domain.VideoRef{Origin: domain.OriginRepository, ID: repositoryID}
	c.mutate(func(s *State) { setStatus(s.Videos, ref, state) })
	err := c.workflow.UpdateStatus(ctx, repositoryID, state)
	return c.settle(err, nil)
}

// Delete removes a repository item. Inbox items are rejected up front and
// stay in the list.
func (c *Controller) Delete(ctx context.Context, ref domain.VideoRef) error {
	if triage.CanDelete(ref.Origin) {
		c.mutate(func(s *State) { s.Videos = without(s.Videos, ref) })
	}
	err := c.workflow.Delete(ctx, ref)

	var override *Notice
	if ref.Origin == domain.OriginTrend {
		override = &Notice{Kind: NoticeKindError, Message: MsgDeleteInbox}
	}
	return c.settle(err, override)
}

func (c *Controller) mutate(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}

func (c *Controller) settle(err error, override *Notice) error {
	if err == nil {
		return nil
	}
	n := NoticeFor(err)
	if override != nil {
		n = override
	}
	c.mu.Lock()
	c.state.Notice = n
	c.mu.Unlock()
	return err
}

func without(videos []domain.Video, ref domain.VideoRef) []domain.Video {
	out := videos[:0]
	for _, v := range videos {
		if v.Ref != ref {
			out = append(out, v)
		}
	}
	return out
}

func setStatus(videos []domain.Video, ref domain.VideoRef, state domain.TriageState) {
	for i := range videos {
		if videos[i].Ref == ref {
			videos[i].Status = state
		}
	}
}
