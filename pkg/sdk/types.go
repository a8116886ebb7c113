package homedex

import (
	"github.com/kailas-cloud/homedex/internal/domain/listing"
	"github.com/kailas-cloud/homedex/internal/domain/search/refine"
	"github.com/kailas-cloud/homedex/internal/usecase/browse"
)

// State is a browse session's lifecycle phase.
type State string

// Browse session states.
const (
	StateIdle       State = "idle"
	StateSearching  State = "searching"
	StateReady      State = "ready"
	StatePaginating State = "paginating"
	StateError      State = "error"
)

// Listing is one real-estate record.
type Listing struct {
	ID          string
	Title       string
	Location    string
	Agent       string
	Bedrooms    int
	Price       int64
	URL         string
	Description string
}

// Query echoes the search a view belongs to: free text plus the
// structured filters sent to the backend.
type Query struct {
	Text    string
	Filters map[string]string
}

// Filters is the client-side refine set. It narrows records already in
// the cache without touching the backend; Bedrooms takes a bucket label
// ("1".."6", where "6" means six or more; "" for any).
type Filters struct {
	Location   string
	Agent      string
	Bedrooms   string
	ExactMatch bool
}

// View is a render-ready snapshot of one browse session. Records is the
// current page of the filtered sequence; indexes and counts refer to
// that sequence, not the raw cache.
type View struct {
	State State

	Query   Query
	Filters Filters

	Records  []Listing
	Page     int
	PageSize int

	// StartIndex/EndIndex are 1-based inclusive positions within the
	// filtered sequence, both 0 when the page is empty.
	StartIndex int
	EndIndex   int

	FilteredCount int
	TotalPages    int

	// Total is the backend's total for the search when known.
	Total      int
	TotalKnown bool

	HasNext     bool
	HasPrevious bool

	IsLoading bool

	// Err carries the surfaced failure in the Error state, nil
	// otherwise.
	Err error
}

// Batch is one Fetcher result: the listings for the requested window
// in backend order plus the backend's raw count field. When Count
// differs from len(Listings) it is the authoritative total for the
// query.
type Batch struct {
	Listings []Listing
	Count    int
}

func fromInternalView(v browse.View) View {
	return View{
		State:         State(v.State),
		Query:         Query{Text: v.Query.Text(), Filters: v.Query.Structured()},
		Filters:       fromInternalFilters(v.Filters),
		Records:       fromInternalListings(v.Records),
		Page:          v.PageNumber,
		PageSize:      v.PageSize,
		StartIndex:    v.StartIndex,
		EndIndex:      v.EndIndex,
		FilteredCount: v.FilteredCount,
		TotalPages:    v.TotalPages,
		Total:         v.Total,
		TotalKnown:    v.TotalKnown,
		HasNext:       v.HasNext,
		HasPrevious:   v.HasPrevious,
		IsLoading:     v.IsLoading,
		Err:           v.Err,
	}
}

func fromInternalFilters(f refine.Filters) Filters {
	return Filters{
		Location:   f.Location(),
		Agent:      f.Agent(),
		Bedrooms:   f.BedroomsLabel(),
		ExactMatch: f.ExactMatch(),
	}
}

func fromInternalListings(items []listing.Listing) []Listing {
	if len(items) == 0 {
		return nil
	}
	out := make([]Listing, len(items))
	for i := range items {
		l := &items[i]
		out[i] = Listing{
			ID:          l.ID(),
			Title:       l.Title(),
			Location:    l.Location(),
			Agent:       l.Agent(),
			Bedrooms:    l.Bedrooms(),
			Price:       l.Price(),
			URL:         l.URL(),
			Description: l.Description(),
		}
	}
	return out
}

func toInternalListings(items []Listing) []listing.Listing {
	out := make([]listing.Listing, 0, len(items))
	for _, l := range items {
		out = append(out, listing.Reconstruct(
			l.ID, l.Title, l.Location, l.Agent,
			l.Bedrooms, l.Price, l.URL, l.Description,
		))
	}
	return out
}
