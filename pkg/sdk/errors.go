package homedex

import "github.com/kailas-cloud/homedex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUpstream        = domain.ErrUpstream
	ErrStaleResponse   = domain.ErrStaleResponse
	ErrNoActiveSearch  = domain.ErrNoActiveSearch
	ErrPageOutOfRange  = domain.ErrPageOutOfRange
	ErrInvalidQuery    = domain.ErrInvalidQuery
	ErrInvalidFilter   = domain.ErrInvalidFilter
	ErrSessionNotFound = domain.ErrSessionNotFound
	ErrRetryNotAllowed = domain.ErrRetryNotAllowed
)
