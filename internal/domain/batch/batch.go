package batch

import (
	"fmt"

	"github.com/kailas-cloud/homedex/internal/domain/listing"
)

// Batch is one backend fetch's worth of listings: the large-granularity
// unit the window cache is assembled from.
type Batch struct {
	offset         int
	items          []listing.Listing
	requestedLimit int
	count          int
}

// New validates and creates a Batch. Offset must be >= 0, the
// requested limit > 0, and count (the backend's raw count field) >= 0.
func New(offset int, items []listing.Listing, requestedLimit, count int) (Batch, error) {
	if offset < 0 {
		return Batch{}, fmt.Errorf("batch offset must be >= 0, got %d", offset)
	}
	if requestedLimit <= 0 {
		return Batch{}, fmt.Errorf("batch requested limit must be > 0, got %d", requestedLimit)
	}
	if count < 0 {
		return Batch{}, fmt.Errorf("batch count must be >= 0, got %d", count)
	}
	return Batch{offset: offset, items: items, requestedLimit: requestedLimit, count: count}, nil
}

// Offset returns the 0-based offset the batch was fetched at.
func (b *Batch) Offset() int { return b.offset }

// Items returns the listings in backend order.
func (b *Batch) Items() []listing.Listing { return b.items }

// Len returns the number of listings in the batch.
func (b *Batch) Len() int { return len(b.items) }

// RequestedLimit returns the limit the fetch asked for.
func (b *Batch) RequestedLimit() int { return b.requestedLimit }

// Count returns the backend's raw count field. Prefer TotalHint.
func (b *Batch) Count() int { return b.count }

// TotalHint resolves the backend count contract. The count field is an
// authoritative total only when it differs from the number of items
// returned; a backend that cannot compute totals cheaply echoes the
// item count, which means "unknown". An empty batch is the exception:
// nothing at this offset means nothing beyond it either, so the total
// is the offset itself.
func (b *Batch) TotalHint() (total int, ok bool) {
	if b.count != len(b.items) {
		return b.count, true
	}
	if len(b.items) == 0 {
		return b.offset, true
	}
	return 0, false
}

// End returns offset + item count: the exclusive upper bound of the
// backend range this batch covers.
func (b *Batch) End() int { return b.offset + len(b.items) }
