package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/search/query"
)

// InstrumentedFetcher wraps a Fetcher with structured logging.
// Transport metrics (requests, status, retries) are recorded in
// transport/houndapi; browse-level counters in the service. This layer
// owns per-call logging only.
type InstrumentedFetcher struct {
	inner  Fetcher
	logger *zap.Logger
}

// NewInstrumentedFetcher wraps a fetcher with logging.
func NewInstrumentedFetcher(inner Fetcher, logger *zap.Logger) *InstrumentedFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedFetcher{inner: inner, logger: logger}
}

// FetchBatch delegates to the inner fetcher and logs the outcome.
func (f *InstrumentedFetcher) FetchBatch(
	ctx context.Context, q query.Query, offset, limit int,
) (batch.Batch, error) {
	start := time.Now()

	b, err := f.inner.FetchBatch(ctx, q, offset, limit)

	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			f.logger.Debug("Batch fetch cancelled",
				zap.Int("offset", offset),
				zap.Int("limit", limit),
				zap.Duration("duration", duration),
			)
		} else {
			f.logger.Error("Batch fetch failed",
				zap.Int("offset", offset),
				zap.Int("limit", limit),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		}
		return batch.Batch{}, fmt.Errorf("fetch batch: %w", err)
	}

	f.logger.Debug("Batch fetch completed",
		zap.Int("offset", offset),
		zap.Int("limit", limit),
		zap.Int("items", b.Len()),
		zap.Int("count", b.Count()),
		zap.Duration("duration", duration),
	)

	return b, nil
}
