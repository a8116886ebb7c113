package houndapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/metrics"
	"github.com/kailas-cloud/homedex/internal/version"
)

const (
	searchPath       = "/v1/search"
	defaultTimeout   = 10 * time.Second
	defaultRetries   = 1
	retryDelay       = 250 * time.Millisecond
	maxResponseBytes = 8 << 20
	endpointSearch   = "search"
)

// Listing is the upstream wire representation of one property listing.
// Bedrooms 0 means the backend did not report a count.
type Listing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Agent       string `json:"agent"`
	Bedrooms    int    `json:"bedrooms"`
	Price       int64  `json:"price"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// SearchPage is one page of upstream search results. Count is the
// backend's total for the whole query, but some deployments echo the
// page length instead, so callers must not treat it as authoritative
// on its own.
type SearchPage struct {
	Data  []Listing `json:"data"`
	Count int       `json:"count"`
}

// SearchRequest holds the paged search parameters. Filters are
// backend-side structured parameters (city, ptype, ...) passed through
// as query string values.
type SearchRequest struct {
	Query   string
	Filters map[string]string
	Limit   int
	Offset  int
}

// Config holds the Hound API client settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	UserAgent  string
	RatePerSec float64 // client-side throttle; 0 disables
	Burst      int
	Retries    int // transient retries per request
	Logger     *zap.Logger
}

// Client calls the Hound listings API: a paged search endpoint
// returning JSON batches in a stable relevance order.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	userAgent string
	limiter   *rate.Limiter
	retries   int
	logger    *zap.Logger
}

// NewClient creates a Hound API client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "homedex/" + version.Version
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		userAgent: userAgent,
		limiter:   limiter,
		retries:   retries,
		logger:    logger,
	}
}

// Search fetches one batch of listings. Transient failures (network
// errors, 429, 5xx) are retried once with a short delay; everything
// else maps to a domain upstream error for correct status propagation.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchPage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return SearchPage{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	u, err := c.searchURL(req)
	if err != nil {
		return SearchPage{}, fmt.Errorf("build search url: %w", err)
	}

	start := time.Now()
	page, err := c.doSearch(ctx, u)
	duration := time.Since(start)

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpointSearch, "error").Inc()
		return SearchPage{}, err
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(endpointSearch, "success").Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(endpointSearch).Observe(duration.Seconds())
	return page, nil
}

// HealthCheck verifies API availability with a minimal search probe.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.Search(ctx, SearchRequest{Limit: 1}); err != nil {
		return fmt.Errorf("search probe: %w", err)
	}
	return nil
}

// doSearch runs the request with the retry policy. Caller cancellation
// always wins over a retry.
func (c *Client) doSearch(ctx context.Context, u string) (SearchPage, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			metrics.UpstreamRetriesTotal.WithLabelValues(endpointSearch).Inc()
			c.logger.Warn("Retrying upstream search",
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return SearchPage{}, ctx.Err()
			}
		}

		page, retryable, err := c.attempt(ctx, u)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return SearchPage{}, ctx.Err()
		}
		if !retryable {
			return SearchPage{}, err
		}
		lastErr = err
	}
	return SearchPage{}, lastErr
}

// attempt performs a single HTTP round trip. The bool reports whether
// the failure is worth retrying.
func (c *Client) attempt(ctx context.Context, u string) (SearchPage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return SearchPage{}, false, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues(endpointSearch, "network").Inc()
		return SearchPage{}, true, fmt.Errorf("search request: %v: %w", err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues(endpointSearch, "read").Inc()
		return SearchPage{}, true, fmt.Errorf("read search response: %v: %w", err, domain.ErrUpstream)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamErrorsTotal.WithLabelValues(endpointSearch, "api_error").Inc()
		return SearchPage{}, retryableStatus(resp.StatusCode), parseAPIError(resp.StatusCode, body)
	}

	var page SearchPage
	if err := json.Unmarshal(body, &page); err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues(endpointSearch, "decode").Inc()
		return SearchPage{}, false, fmt.Errorf("decode search response: %v: %w", err, domain.ErrUpstream)
	}
	return page, false, nil
}

func (c *Client) searchURL(req SearchRequest) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	u.Path = path.Join(u.Path, searchPath)

	q := u.Query()
	if req.Query != "" {
		q.Set("q", req.Query)
	}
	q.Set("limit", strconv.Itoa(req.Limit))
	q.Set("offset", strconv.Itoa(req.Offset))
	for k, v := range req.Filters {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrUpstream for correct 502 mapping.
func parseAPIError(status int, body []byte) error {
	detail := extractDetail(body)
	if detail == "" {
		detail = string(body)
	}
	return fmt.Errorf("search listings: %w", domain.NewUpstreamStatus(status, detail))
}

// extractDetail extracts the "detail" or "message" field from a JSON
// error body (Hound error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return ""
}
