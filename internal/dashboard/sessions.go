package dashboard

import "sync"

// Sessions keeps one Controller per operator subject.
type Sessions struct {
	workflow Workflow

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewSessions creates an empty session registry.
func NewSessions(w Workflow) *Sessions {
	return &Sessions{workflow: w, controllers: make(map[string]*Controller)}
}

// Get returns the controller of subject, creating it on first use.
func (s *Sessions) Get(subject string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[subject]
	if !ok {
		c = NewController(s.workflow)
		s.controllers[subject] = c
	}
	return c
}

// Drop forgets the session of subject (logout).
func (s *Sessions) Drop(subject string) {
	s.mu.Lock()
	delete(s.controllers, subject)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.controllers)
}
