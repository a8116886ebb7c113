package listings

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/search/query"
	"github.com/kailas-cloud/homedex/internal/transport/houndapi"
)

// searcher is the consumer interface for the upstream client (ISP).
type searcher interface {
	Search(ctx context.Context, req houndapi.SearchRequest) (houndapi.SearchPage, error)
}

// Repo implements usecase/browse.Fetcher over the Hound API.
type Repo struct {
	api searcher
}

// New creates a listings repository.
func New(api searcher) *Repo {
	return &Repo{api: api}
}

// FetchBatch fetches one batch of listings for a query and adapts the
// wire page into a domain batch. The backend orders records stably for
// a fixed query, so an offset identifies the same window across calls.
func (r *Repo) FetchBatch(ctx context.Context, q query.Query, offset, limit int) (batch.Batch, error) {
	page, err := r.api.Search(ctx, houndapi.SearchRequest{
		Query:   q.Text(),
		Filters: q.Structured(),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return batch.Batch{}, fmt.Errorf("fetch listings at %d: %w", offset, err)
	}

	b, err := toBatch(page, offset, limit)
	if err != nil {
		return batch.Batch{}, fmt.Errorf("adapt listings at %d: %w", offset, err)
	}
	return b, nil
}
