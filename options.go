package homedex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	userAgent  string
	ratePerSec float64
	burst      int
	retries    int

	fetcher Fetcher

	pageSize  int
	batchSize int

	logger  *zap.Logger
	metrics bool
}

// WithHoundAPI points the client at a Hound listings backend.
func WithHoundAPI(baseURL, apiKey string) Option {
	return func(c *clientConfig) {
		c.baseURL = baseURL
		c.apiKey = apiKey
	}
}

// WithTimeout sets the per-request upstream timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent sent to the backend.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithRateLimit throttles upstream requests client-side.
// perSec <= 0 disables the limiter.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *clientConfig) {
		c.ratePerSec = perSec
		c.burst = burst
	}
}

// WithRetries sets how many times a transient upstream failure is
// retried per request.
func WithRetries(n int) Option {
	return func(c *clientConfig) {
		c.retries = n
	}
}

// WithFetcher replaces the Hound backend with a custom listings
// source. When set, the Hound options are ignored.
func WithFetcher(f Fetcher) Option {
	return func(c *clientConfig) {
		c.fetcher = f
	}
}

// WithPageSize sets the default display page size for new browsers.
func WithPageSize(n int) Option {
	return func(c *clientConfig) {
		c.pageSize = n
	}
}

// WithBatchSize sets the default backend fetch size for new browsers.
func WithBatchSize(n int) Option {
	return func(c *clientConfig) {
		c.batchSize = n
	}
}

// WithLogger sets the logger used by the client and its browsers.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithMetrics registers the browse and upstream Prometheus collectors
// on the default registry. Registration is idempotent across clients.
func WithMetrics() Option {
	return func(c *clientConfig) {
		c.metrics = true
	}
}
