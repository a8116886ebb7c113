package homedex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/search/query"
	"github.com/kailas-cloud/homedex/internal/repository/listings"
	"github.com/kailas-cloud/homedex/internal/transport/houndapi"
	"github.com/kailas-cloud/homedex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/homedex/internal/usecase/health"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	readinessProbeInterval  = 250 * time.Millisecond
)

// Внутренние интерфейсы для подмены в тестах.
type browseUseCase interface {
	View() browse.View
	Search(ctx context.Context, text string, structured map[string]string) (browse.View, error)
	GoToPage(ctx context.Context, n int) (browse.View, error)
	GoToNext(ctx context.Context) (browse.View, error)
	GoToPrevious(ctx context.Context) (browse.View, error)
	SetFilters(location, agent, bedrooms string, exactMatch bool) (browse.View, error)
	ResetFilters() (browse.View, error)
	Retry(ctx context.Context) (browse.View, error)
	Reset() browse.View
	Suggest(field, input string, limit int) ([]string, error)
	Locations() []string
	Agents() []string
	PageSize() int
	Close()
}

type upstreamPinger interface {
	HealthCheck(ctx context.Context) error
}

// Client is the homedex SDK entry point.
type Client struct {
	fetcher   browse.Fetcher
	hound     upstreamPinger // noop when browsing a custom Fetcher
	healthSvc healthUseCase
	pageSize  int
	batchSize int
	obs       *observer

	mu       sync.Mutex
	browsers map[*Browser]struct{}
}

// New creates a homedex Client wired to a listings source.
// The provided context bounds the initial backend readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		pageSize:  browse.DefaultPageSize,
		batchSize: browse.DefaultBatchSize,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.fetcher == nil && cfg.baseURL == "" {
		return nil, errors.New(
			"homedex: listings source required (use WithHoundAPI or WithFetcher)",
		)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	if cfg.fetcher != nil {
		return wireClient(&fetcherAdapter{inner: cfg.fetcher}, noopPinger{}, cfg, obs), nil
	}

	hound := houndapi.NewClient(&houndapi.Config{
		BaseURL:    cfg.baseURL,
		APIKey:     cfg.apiKey,
		Timeout:    cfg.timeout,
		UserAgent:  cfg.userAgent,
		RatePerSec: cfg.ratePerSec,
		Burst:      cfg.burst,
		Retries:    cfg.retries,
		Logger:     zap.NewNop(),
	})
	if err := waitForReady(ctx, hound, defaultReadinessTimeout); err != nil {
		return nil, fmt.Errorf("homedex: backend not ready: %w", err)
	}
	return wireClient(listings.New(hound), hound, cfg, obs), nil
}

// waitForReady probes the backend until it responds or the timeout
// elapses.
func waitForReady(ctx context.Context, hound upstreamPinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		if lastErr = hound.HealthCheck(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(readinessProbeInterval):
		}
	}
}

func wireClient(fetcher browse.Fetcher, hound upstreamPinger, cfg *clientConfig, obs *observer) *Client {
	return &Client{
		fetcher:   fetcher,
		hound:     hound,
		healthSvc: healthuc.New(hound),
		pageSize:  cfg.pageSize,
		batchSize: cfg.batchSize,
		obs:       obs,
		browsers:  make(map[*Browser]struct{}),
	}
}

// NewBrowser starts an independent browse session against the client's
// listings source.
func (c *Client) NewBrowser(opts ...BrowserOption) *Browser {
	bc := &browserConfig{pageSize: c.pageSize, batchSize: c.batchSize}
	for _, o := range opts {
		o.applyBrowser(bc)
	}

	b := &Browser{
		svc:    browse.New(c.fetcher, bc.pageSize, bc.batchSize),
		obs:    c.obs,
		client: c,
	}

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

// Ping checks backend connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.hound.HealthCheck(ctx); err != nil {
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

// noopPinger reports a healthy upstream when there is none to probe
// (custom Fetcher mode).
type noopPinger struct{}

func (noopPinger) HealthCheck(context.Context) error { return nil }
