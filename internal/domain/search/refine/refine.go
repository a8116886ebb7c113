package refine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/homedex/internal/domain/listing"
)

// MaxBedroomBucket is the highest bedroom bucket offered by the filter
// UI. Selecting it means "this many or more"; every lower bucket is an
// exact match.
const MaxBedroomBucket = 6

// Filters narrows cached listings locally. Orthogonal to the
// structured filters sent upstream: changing these never invalidates
// the cache and never triggers a fetch, only a re-slice.
type Filters struct {
	location string
	agent    string
	bedrooms int // 0 = inactive
	exact    bool
}

// New validates and creates Filters. Empty strings deactivate the
// corresponding filter. Bedrooms must be empty or an integer bucket in
// [1, MaxBedroomBucket].
func New(location, agent, bedrooms string, exactMatch bool) (Filters, error) {
	f := Filters{
		location: strings.TrimSpace(location),
		agent:    strings.TrimSpace(agent),
		exact:    exactMatch,
	}
	if b := strings.TrimSpace(bedrooms); b != "" {
		n, err := strconv.Atoi(b)
		if err != nil {
			return Filters{}, fmt.Errorf("bedrooms filter %q is not a number", bedrooms)
		}
		if n < 1 || n > MaxBedroomBucket {
			return Filters{}, fmt.Errorf("bedrooms filter must be between 1 and %d, got %d", MaxBedroomBucket, n)
		}
		f.bedrooms = n
	}
	return f, nil
}

// Location returns the location filter value, empty when inactive.
func (f Filters) Location() string { return f.location }

// Agent returns the agent filter value, empty when inactive.
func (f Filters) Agent() string { return f.agent }

// Bedrooms returns the bedroom bucket, 0 when inactive.
func (f Filters) Bedrooms() int { return f.bedrooms }

// BedroomsLabel returns the bucket as the UI string form, empty when
// inactive.
func (f Filters) BedroomsLabel() string {
	if f.bedrooms == 0 {
		return ""
	}
	return strconv.Itoa(f.bedrooms)
}

// ExactMatch reports whether string filters require equality instead
// of substring containment.
func (f Filters) ExactMatch() bool { return f.exact }

// IsEmpty reports whether no filter is active.
func (f Filters) IsEmpty() bool {
	return f.location == "" && f.agent == "" && f.bedrooms == 0
}

// Match reports whether a listing passes every active filter.
// A listing lacking a compared field is excluded by that filter.
func (f Filters) Match(l *listing.Listing) bool {
	if !f.matchText(l.Location(), f.location) {
		return false
	}
	if !f.matchText(l.Agent(), f.agent) {
		return false
	}
	return f.matchBedrooms(l.Bedrooms())
}

func (f Filters) matchText(field, want string) bool {
	if want == "" {
		return true
	}
	if field == "" {
		return false
	}
	if f.exact {
		return strings.EqualFold(field, want)
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(want))
}

func (f Filters) matchBedrooms(got int) bool {
	if f.bedrooms == 0 {
		return true
	}
	if got <= 0 {
		return false
	}
	if f.bedrooms == MaxBedroomBucket {
		return got >= MaxBedroomBucket
	}
	return got == f.bedrooms
}

// Apply returns the listings passing every active filter, preserving
// order. Pure: the input slice is never mutated. With no active filter
// the input is returned as-is.
func Apply(items []listing.Listing, f Filters) []listing.Listing {
	if f.IsEmpty() {
		return items
	}
	out := make([]listing.Listing, 0, len(items))
	for i := range items {
		if f.Match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// BedroomBuckets returns the bucket labels the filter UI offers, in
// ascending order. The last bucket is open-ended.
func BedroomBuckets() []string {
	out := make([]string, MaxBedroomBucket)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}
