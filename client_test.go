package homedex

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew_NoSource(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no listings source provided")
	}
}

func TestNew_CustomFetcher(t *testing.T) {
	c, err := New(WithFetcher(&mockFetcher{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()
	if c.hound != nil {
		t.Error("expected no hound client with a custom fetcher")
	}
}

func TestFetcherAdapter(t *testing.T) {
	var gotText string
	var gotOffset, gotLimit int
	mock := &mockFetcher{
		fn: func(_ context.Context, text string, _ map[string]string, offset, limit int) (Batch, error) {
			gotText, gotOffset, gotLimit = text, offset, limit
			return Batch{
				Listings: []Listing{
					{ID: "lst-1", Title: "2BHK in Indiranagar", Location: "Indiranagar", Bedrooms: 2},
					{ID: "lst-2", Title: "Villa in Whitefield", Location: "Whitefield", Bedrooms: 4},
				},
				Count: 57,
			}, nil
		},
	}

	adapter := &fetcherAdapter{inner: mock}
	q := mustQuery(t, "bhk", nil)
	b, err := adapter.FetchBatch(context.Background(), q, 40, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotText != "bhk" || gotOffset != 40 || gotLimit != 20 {
		t.Errorf("inner call = (%q, %d, %d), want (bhk, 40, 20)", gotText, gotOffset, gotLimit)
	}
	if b.Offset() != 40 {
		t.Errorf("offset = %d, want 40", b.Offset())
	}
	if b.Len() != 2 {
		t.Errorf("len = %d, want 2", b.Len())
	}
	if b.Count() != 57 {
		t.Errorf("count = %d, want 57", b.Count())
	}
	if got := b.Items()[0].ID(); got != "lst-1" {
		t.Errorf("first id = %q, want lst-1", got)
	}
}

func TestFetcherAdapter_Error(t *testing.T) {
	mock := &mockFetcher{
		fn: func(_ context.Context, _ string, _ map[string]string, _, _ int) (Batch, error) {
			return Batch{}, errors.New("backend down")
		},
	}

	adapter := &fetcherAdapter{inner: mock}
	_, err := adapter.FetchBatch(context.Background(), mustQuery(t, "x", nil), 0, 20)
	if err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithHoundAPI("http://hound:9100", "secret")(cfg)
	if cfg.baseURL != "http://hound:9100" {
		t.Errorf("baseURL = %q, want http://hound:9100", cfg.baseURL)
	}
	if cfg.apiKey != "secret" {
		t.Errorf("apiKey = %q, want secret", cfg.apiKey)
	}

	WithTimeout(3 * time.Second)(cfg)
	if cfg.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.timeout)
	}

	WithUserAgent("homedex-test/1")(cfg)
	if cfg.userAgent != "homedex-test/1" {
		t.Errorf("userAgent = %q, want homedex-test/1", cfg.userAgent)
	}

	WithRateLimit(10, 5)(cfg)
	if cfg.ratePerSec != 10 || cfg.burst != 5 {
		t.Errorf("rate = (%v, %d), want (10, 5)", cfg.ratePerSec, cfg.burst)
	}

	WithRetries(2)(cfg)
	if cfg.retries != 2 {
		t.Errorf("retries = %d, want 2", cfg.retries)
	}

	WithPageSize(50)(cfg)
	if cfg.pageSize != 50 {
		t.Errorf("pageSize = %d, want 50", cfg.pageSize)
	}

	WithBatchSize(200)(cfg)
	if cfg.batchSize != 200 {
		t.Errorf("batchSize = %d, want 200", cfg.batchSize)
	}

	WithFetcher(&mockFetcher{})(cfg)
	if cfg.fetcher == nil {
		t.Error("expected non-nil fetcher")
	}

	WithMetrics()(cfg)
	if !cfg.metrics {
		t.Error("expected metrics flag set")
	}
}

func TestBrowserOptions(t *testing.T) {
	c, err := New(WithFetcher(&mockFetcher{}), WithPageSize(20), WithBatchSize(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	b := c.NewBrowser(PageSize(5), BatchSize(40))
	defer b.Close()
	if got := b.svc.PageSize(); got != 5 {
		t.Errorf("page size = %d, want 5", got)
	}
	if got := b.svc.BatchSize(); got != 40 {
		t.Errorf("batch size = %d, want 40", got)
	}

	// Без опций браузер наследует настройки клиента.
	def := c.NewBrowser()
	defer def.Close()
	if got := def.svc.PageSize(); got != 20 {
		t.Errorf("default page size = %d, want 20", got)
	}
}

func TestPing_CustomFetcher(t *testing.T) {
	c, err := New(WithFetcher(&mockFetcher{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}
}

func TestClient_CloseReleasesBrowsers(t *testing.T) {
	c, err := New(WithFetcher(&mockFetcher{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b1 := c.NewBrowser()
	b2 := c.NewBrowser()
	if got := len(c.browsers); got != 2 {
		t.Fatalf("open browsers = %d, want 2", got)
	}

	b1.Close()
	if got := len(c.browsers); got != 1 {
		t.Errorf("open browsers after Close = %d, want 1", got)
	}

	c.Close()
	if got := len(c.browsers); got != 0 {
		t.Errorf("open browsers after client Close = %d, want 0", got)
	}
	_ = b2
}
