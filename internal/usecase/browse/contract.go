package browse

import (
	"context"

	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/search/query"
)

// Fetcher retrieves one batch of listings from the search backend.
// Offset must be >= 0 and limit > 0. Implementations return items in
// backend order, assumed stable for a fixed query across calls; the
// window cache's offset bookkeeping relies on that assumption.
type Fetcher interface {
	FetchBatch(ctx context.Context, q query.Query, offset, limit int) (batch.Batch, error)
}
