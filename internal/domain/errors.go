package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream signals a search backend failure (network or 5xx).
	// Retryable; surfaced to the user with a retry affordance.
	ErrUpstream = errors.New("upstream search failure")
	// ErrStaleResponse signals a fetch that resolved after its lineage
	// was superseded. Dropped silently, never surfaced.
	ErrStaleResponse = errors.New("stale response")
	// ErrNoActiveSearch signals navigation before any search started.
	ErrNoActiveSearch = errors.New("no active search")
	// ErrPageOutOfRange signals an invalid page number (< 1). A page
	// past the known end is not an error: it renders empty.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrInvalidQuery signals a malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidFilter signals a malformed client filter.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrSessionNotFound signals a missing or expired browse session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRetryNotAllowed signals a retry outside the error state.
	ErrRetryNotAllowed = errors.New("nothing to retry")
)

// UpstreamStatusError wraps ErrUpstream with the backend's HTTP status
// and response detail.
type UpstreamStatusError struct {
	Status int
	Detail string
}

func (e *UpstreamStatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", ErrUpstream.Error(), e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrUpstream.Error(), e.Status, e.Detail)
}

func (e *UpstreamStatusError) Unwrap() error { return ErrUpstream }

// NewUpstreamStatus creates an upstream status error.
func NewUpstreamStatus(status int, detail string) error {
	return &UpstreamStatusError{Status: status, Detail: detail}
}
