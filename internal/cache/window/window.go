package window

import (
	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/listing"
)

// Cache is the windowed listing buffer for one search lineage:
// append-only, deduplicated by listing ID, ordered by fetch order.
// It tracks how far into the backend's result sequence the lineage has
// been fetched and the best known total.
//
// Not safe for concurrent use. The browse service owns one Cache per
// lineage and serializes every mutation.
type Cache struct {
	lineage     string
	items       []listing.Listing
	seen        map[string]struct{}
	fetchedUpTo int
	totalHint   int
	hintKnown   bool
}

// New creates an empty cache bound to a lineage token.
func New(lineage string) *Cache {
	return &Cache{lineage: lineage, seen: make(map[string]struct{})}
}

// Lineage returns the token the cache is bound to.
func (c *Cache) Lineage() string { return c.lineage }

// Reset clears all state and rebinds the cache to a new lineage.
func (c *Cache) Reset(lineage string) {
	c.lineage = lineage
	c.items = nil
	c.seen = make(map[string]struct{})
	c.fetchedUpTo = 0
	c.totalHint = 0
	c.hintKnown = false
}

// Merge appends the batch's listings, skipping IDs already present,
// and advances the fetch frontier. Replaying a batch is a no-op apart
// from the (idempotent) bookkeeping, so retries cannot duplicate
// records or overcount the frontier. Returns the number of listings
// actually appended.
//
// Total resolution: an authoritative batch count is adopted when the
// cache has no total yet or the batch reports a larger one. An empty
// batch at the frontier is a direct observation that the sequence ends
// there and overrides any earlier figure.
func (c *Cache) Merge(b batch.Batch) int {
	if t, ok := b.TotalHint(); ok {
		switch {
		case b.Len() == 0 && b.Offset() >= c.fetchedUpTo:
			c.totalHint = t
			c.hintKnown = true
		case b.Len() > 0 && (!c.hintKnown || t > c.totalHint):
			c.totalHint = t
			c.hintKnown = true
		}
	}

	appended := 0
	for _, l := range b.Items() {
		if _, ok := c.seen[l.ID()]; ok {
			continue
		}
		c.seen[l.ID()] = struct{}{}
		c.items = append(c.items, l)
		appended++
	}

	if end := b.End(); end > c.fetchedUpTo {
		c.fetchedUpTo = end
	}
	// счётчик от бэкенда не может быть меньше того, что уже лежит в кэше
	if c.hintKnown && c.totalHint < len(c.items) {
		c.totalHint = len(c.items)
	}
	return appended
}

// Size returns the number of distinct listings fetched so far.
func (c *Cache) Size() int { return len(c.items) }

// Items returns the deduplicated listings in fetch order. Callers must
// not mutate the returned slice.
func (c *Cache) Items() []listing.Listing { return c.items }

// FetchedUpTo returns the exclusive upper bound of backend offsets
// retrieved so far.
func (c *Cache) FetchedUpTo() int { return c.fetchedUpTo }

// Has reports whether the backend range [offset, offset+count) has
// already been retrieved.
func (c *Cache) Has(offset, count int) bool {
	return offset >= 0 && count >= 0 && offset+count <= c.fetchedUpTo
}

// TotalHint returns the best known total of matching records upstream
// and whether it is known at all.
func (c *Cache) TotalHint() (int, bool) {
	if !c.hintKnown {
		return 0, false
	}
	return c.totalHint, true
}

// Exhausted reports whether the cache holds everything the backend
// has for this lineage. False while the total is unknown.
func (c *Cache) Exhausted() bool {
	return c.hintKnown && c.fetchedUpTo >= c.totalHint
}
