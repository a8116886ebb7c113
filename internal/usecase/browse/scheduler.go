package browse

import (
	"github.com/kailas-cloud/homedex/internal/domain/search/page"
)

// Plan is the scheduler's verdict for one requested page.
type Plan struct {
	// PagesPerBatch is how many display pages one backend batch spans.
	PagesPerBatch int
	// PositionInBatch is the 1-based position of the requested page
	// within its batch.
	PositionInBatch int
	// Blocking is set when the page start lies at or beyond the fetch
	// frontier: the page cannot render until a foreground fetch lands.
	Blocking bool
	// Prefetch is set when the user is near the end of the loaded
	// batch and the following batch should be fetched in the
	// background. Never set together with Blocking.
	Prefetch bool
	// Offset is the backend offset to fetch when Blocking or Prefetch
	// is set: always the current frontier.
	Offset int
}

// Schedule decides whether rendering pg requires a foreground fetch,
// warrants a background prefetch, or is satisfied by the cache.
//
// The prefetch trigger fires on the last two pages of the batch the
// requested page belongs to, provided the following batch has not been
// fetched and the total (when known) says more records remain. The
// fetch offset is the frontier rather than the arithmetic batch
// boundary, so short or deduplicated batches never leave gaps.
func Schedule(pg page.Page, batchSize, fetchedUpTo, total int, totalKnown bool) Plan {
	pagesPerBatch := batchSize / pg.Size()
	if pagesPerBatch < 1 {
		pagesPerBatch = 1
	}
	position := (pg.Number()-1)%pagesPerBatch + 1

	plan := Plan{PagesPerBatch: pagesPerBatch, PositionInBatch: position}
	exhausted := totalKnown && fetchedUpTo >= total

	if pg.StartIndex() >= fetchedUpTo {
		if exhausted {
			return plan // nothing left to fetch; the page renders its (possibly empty) tail
		}
		plan.Blocking = true
		plan.Offset = fetchedUpTo
		return plan
	}

	if position < pagesPerBatch-1 {
		return plan
	}
	nextBatchStart := ((pg.Number()-1)/pagesPerBatch + 1) * batchSize
	if nextBatchStart < fetchedUpTo || exhausted {
		return plan
	}
	plan.Prefetch = true
	plan.Offset = fetchedUpTo
	return plan
}
