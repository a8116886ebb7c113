package homedex

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/search/query"
	"github.com/kailas-cloud/homedex/internal/metrics"
	"github.com/kailas-cloud/homedex/internal/repository/listings"
	"github.com/kailas-cloud/homedex/internal/transport/houndapi"
	"github.com/kailas-cloud/homedex/internal/usecase/browse"
)

// Client is the homedex SDK entry point.
type Client struct {
	fetcher   browse.Fetcher
	hound     *houndapi.Client // nil when browsing a custom Fetcher
	pageSize  int
	batchSize int
	logger    *zap.Logger

	mu       sync.Mutex
	browsers map[*Browser]struct{}
}

// New creates a homedex Client wired to a listings source.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		pageSize:  browse.DefaultPageSize,
		batchSize: browse.DefaultBatchSize,
	}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.fetcher == nil && cfg.baseURL == "" {
		return nil, errors.New(
			"homedex: listings source required (use WithHoundAPI or WithFetcher)",
		)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.metrics {
		metrics.RegisterBrowseMetrics()
		metrics.RegisterUpstreamMetrics()
	}

	fetcher, hound := createFetcher(cfg, logger)

	return &Client{
		fetcher:   browse.NewInstrumentedFetcher(fetcher, logger),
		hound:     hound,
		pageSize:  cfg.pageSize,
		batchSize: cfg.batchSize,
		logger:    logger,
		browsers:  make(map[*Browser]struct{}),
	}, nil
}

func createFetcher(cfg *clientConfig, logger *zap.Logger) (browse.Fetcher, *houndapi.Client) {
	if cfg.fetcher != nil {
		return &fetcherAdapter{inner: cfg.fetcher}, nil
	}
	hound := houndapi.NewClient(&houndapi.Config{
		BaseURL:    cfg.baseURL,
		APIKey:     cfg.apiKey,
		Timeout:    cfg.timeout,
		UserAgent:  cfg.userAgent,
		RatePerSec: cfg.ratePerSec,
		Burst:      cfg.burst,
		Retries:    cfg.retries,
		Logger:     logger,
	})
	return listings.New(hound), hound
}

// NewBrowser starts an independent browse session against the client's
// listings source.
func (c *Client) NewBrowser(opts ...BrowserOption) *Browser {
	bc := &browserConfig{pageSize: c.pageSize, batchSize: c.batchSize}
	for _, o := range opts {
		o(bc)
	}

	svc := browse.New(c.fetcher, bc.pageSize, bc.batchSize).WithLogger(c.logger)
	b := &Browser{svc: svc, client: c}

	c.mu.Lock()
	c.browsers[b] = struct{}{}
	c.mu.Unlock()
	return b
}

func (c *Client) release(b *Browser) {
	c.mu.Lock()
	delete(c.browsers, b)
	c.mu.Unlock()
}

// Ping checks backend connectivity. Always nil for a custom Fetcher.
func (c *Client) Ping(ctx context.Context) error {
	if c.hound == nil {
		return nil
	}
	if err := c.hound.HealthCheck(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close ends every browser the client opened, cancelling their
// in-flight and background fetches.
func (c *Client) Close() {
	c.mu.Lock()
	open := make([]*Browser, 0, len(c.browsers))
	for b := range c.browsers {
		open = append(open, b)
	}
	c.browsers = make(map[*Browser]struct{})
	c.mu.Unlock()

	for _, b := range open {
		b.svc.Close()
	}
}

// fetcherAdapter wraps a public Fetcher to satisfy the internal browse
// contract. The requested offset stamps the batch: the backend echoes
// no offset of its own.
type fetcherAdapter struct {
	inner Fetcher
}

func (a *fetcherAdapter) FetchBatch(
	ctx context.Context, q query.Query, offset, limit int,
) (batch.Batch, error) {
	res, err := a.inner.FetchBatch(ctx, q.Text(), q.Structured(), offset, limit)
	if err != nil {
		return batch.Batch{}, fmt.Errorf("fetch batch: %w", err)
	}
	b, err := batch.New(offset, toInternalListings(res.Listings), limit, res.Count)
	if err != nil {
		return batch.Batch{}, fmt.Errorf("adapt batch: %w", err)
	}
	return b, nil
}
