package listings

import (
	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/listing"
	"github.com/kailas-cloud/homedex/internal/transport/houndapi"
)

// toBatch converts an upstream page into a domain batch. Count passes
// through untouched: the cache compares it against the page length to
// decide whether it is authoritative, so adapting must not change
// either side of that comparison.
func toBatch(page houndapi.SearchPage, offset, limit int) (batch.Batch, error) {
	items := make([]listing.Listing, 0, len(page.Data))
	for _, d := range page.Data {
		items = append(items, toListing(d))
	}
	return batch.New(offset, items, limit, page.Count)
}

// toListing hydrates a wire listing without validation (backend data).
func toListing(d houndapi.Listing) listing.Listing {
	return listing.Reconstruct(
		d.ID, d.Title, d.Location, d.Agent,
		d.Bedrooms, d.Price, d.URL, d.Description,
	)
}
