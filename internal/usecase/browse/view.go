package browse

import (
	"github.com/kailas-cloud/homedex/internal/domain/listing"
	"github.com/kailas-cloud/homedex/internal/domain/search/query"
	"github.com/kailas-cloud/homedex/internal/domain/search/refine"
)

// State is the controller's lifecycle phase.
type State string

// Controller states.
const (
	StateIdle       State = "idle"
	StateSearching  State = "searching"
	StateReady      State = "ready"
	StatePaginating State = "paginating"
	StateError      State = "error"
)

// View is an immutable snapshot for the rendering layer. Records is
// the current page of the filtered sequence; indexes and totals refer
// to that sequence, not the raw cache.
type View struct {
	State State

	Query   query.Query
	Filters refine.Filters

	Records    []listing.Listing
	PageNumber int
	PageSize   int

	// StartIndex/EndIndex are 1-based inclusive positions of the page
	// within the filtered sequence ("showing 21-40 of ..."), both 0
	// when the page is empty.
	StartIndex int
	EndIndex   int

	// FilteredCount is the number of cached records passing the
	// active filters; TotalPages is derived from it.
	FilteredCount int
	TotalPages    int

	// Total is the backend's total for the lineage when known.
	Total      int
	TotalKnown bool

	HasNext     bool
	HasPrevious bool

	// IsLoading is set while a foreground fetch is in flight
	// (Searching or Paginating).
	IsLoading bool

	// Err carries the surfaced failure in the Error state, nil
	// otherwise. Background prefetch failures never appear here.
	Err error
}

// snapshot builds a View from controller state. Caller holds s.mu.
func (s *Service) snapshot() View {
	v := View{
		State:      s.state,
		Query:      s.query,
		Filters:    s.filters,
		PageNumber: s.pg.Number(),
		PageSize:   s.pg.Size(),
		IsLoading:  s.state == StateSearching || s.state == StatePaginating,
		Err:        s.lastErr,
	}
	if s.state == StateIdle {
		return v
	}

	filtered := refine.Apply(s.cache.Items(), s.filters)
	v.FilteredCount = len(filtered)
	v.TotalPages = (len(filtered) + s.pg.Size() - 1) / s.pg.Size()
	if t, ok := s.cache.TotalHint(); ok {
		v.Total = t
		v.TotalKnown = true
	}

	start := s.pg.StartIndex()
	if start < len(filtered) {
		end := start + s.pg.Size()
		if end > len(filtered) {
			end = len(filtered)
		}
		v.Records = filtered[start:end]
		v.StartIndex = start + 1
		v.EndIndex = end
	}

	v.HasPrevious = s.pg.Number() > 1
	v.HasNext = start+s.pg.Size() < len(filtered) || !s.cache.Exhausted()
	return v
}
