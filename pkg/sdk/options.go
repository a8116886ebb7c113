package homedex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

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

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithHoundAPI points the client at a Hound listings backend.
func WithHoundAPI(baseURL, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = baseURL
		c.apiKey = apiKey
	})
}

// WithTimeout sets the per-request upstream timeout.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithUserAgent sets the User-Agent sent to the backend.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithRateLimit throttles upstream requests client-side.
// perSec <= 0 disables the limiter.
func WithRateLimit(perSec float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.ratePerSec = perSec
		c.burst = burst
	})
}

// WithRetries sets how many times a transient upstream failure is
// retried per request.
func WithRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.retries = n
	})
}

// WithFetcher replaces the Hound backend with a custom listings source.
// When set, the Hound options and the readiness probe are skipped.
func WithFetcher(f Fetcher) Option {
	return optionFunc(func(c *clientConfig) {
		c.fetcher = f
	})
}

// WithPageSize sets the default display page size for new browsers.
// Default: 20.
func WithPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageSize = n
	})
}

// WithBatchSize sets the default backend fetch size for new browsers.
// Default: 100.
func WithBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
