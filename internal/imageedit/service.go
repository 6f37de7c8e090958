package imageedit

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Result is an edited thumbnail. URL is set only when a Store is configured.
type Result struct {
	Image string `json:"image"`
	URL   string `json:"url,omitempty"`
}

// Service edits images and uploads the result when storage is available.
type Service struct {
	editor *Editor
	store  Store
	logger *log.Logger
	now    func() time.Time
}

// NewService creates a Service. store may be nil.
func NewService(editor *Editor, store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{editor: editor, store: store, logger: logger, now: time.Now}
}

// Enabled reports whether edits can be served.
func (s *Service) Enabled() bool { return s.editor != nil && s.editor.Enabled() }

// Edit runs the edit and uploads the result. An upload failure is logged
// and the inline image is still returned.
func (s *Service) Edit(ctx context.Context, image, instruction string) (*Result, error) {
	if s.editor == nil {
		return nil, ErrDisabled
	}
	out, err := s.editor.Edit(ctx, image, instruction)
	if err != nil {
		return nil, err
	}

	res := &Result{Image: out}
	if s.store == nil {
		return res, nil
	}

	raw, err := Decode(out)
	if err != nil {
		return nil, fmt.Errorf("decode edited image: %w", err)
	}
	url, err := s.store.Put(ctx, ObjectKey(s.now()), raw, DefaultMIME)
	if err != nil {
		s.logger.Printf("thumbnail upload failed: %v", err)
		return res, nil
	}
	res.URL = url
	return res, nil
}
