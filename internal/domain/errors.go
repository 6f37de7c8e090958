package domain

import "errors"

// Error taxonomy shared by the workflow, the calculator and the HTTP surface.
// Callers match with errors.Is; context is added with fmt.Errorf("...: %w").
var (
	// ErrInvalidInput is returned when a request fails validation
	// (missing required fields, negative quantities, non-finite prices).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable is returned when the trend source, the
	// repository store or an AI collaborator cannot be reached or errors.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrDuplicateEntry is returned when approving an item that already
	// has a repository row.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrUnsupportedOperation is returned for operations that are not
	// permitted on the item's origin or state, e.g. deleting an inbox item.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrNotFound is returned when a referenced trend, repository row or
	// short does not exist.
	ErrNotFound = errors.New("not found")
)
