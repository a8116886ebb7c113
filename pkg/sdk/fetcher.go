package homedex

import "context"

// Fetcher supplies listing batches from a custom backend (use
// WithFetcher); the default source is the Hound API. Implementations
// must return items in a stable order for a fixed query: the cache
// keys windows by offset and assumes offset N names the same records
// across calls.
type Fetcher interface {
	FetchBatch(
		ctx context.Context, text string, filters map[string]string,
		offset, limit int,
	) (Batch, error)
}
