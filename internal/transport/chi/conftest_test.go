package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/listing"
	"github.com/kailas-cloud/homedex/internal/domain/search/query"
	"github.com/kailas-cloud/homedex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/homedex/internal/usecase/health"
)

// --- Mocks ---

// stubFetcher serves one scripted dataset to every lineage. fail makes
// fetches error until cleared.
type stubFetcher struct {
	mu    sync.Mutex
	data  []listing.Listing
	total int
	fail  bool
	calls int
}

func (f *stubFetcher) FetchBatch(_ context.Context, _ query.Query, offset, limit int) (batch.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return batch.Batch{}, fmt.Errorf("search listings: %w", domain.NewUpstreamStatus(502, "bad gateway"))
	}
	var items []listing.Listing
	if offset < len(f.data) {
		end := offset + limit
		if end > len(f.data) {
			end = len(f.data)
		}
		items = f.data[offset:end]
	}
	count := len(items)
	if f.total > 0 {
		count = f.total
	}
	return batch.New(offset, items, limit, count)
}

func (f *stubFetcher) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stubUpstream struct {
	mu  sync.Mutex
	err error
}

func (s *stubUpstream) HealthCheck(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *stubUpstream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// --- Helpers ---

type testEnv struct {
	router   http.Handler
	hub      *Hub
	fetcher  *stubFetcher
	upstream *stubUpstream
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fetcher := &stubFetcher{data: makeListings(437), total: 437}
	hub := NewHub(func(pageSize int) *browse.Service {
		return browse.New(fetcher, pageSize, 100)
	}, HubConfig{}, zap.NewNop())
	t.Cleanup(hub.Stop)

	upstream := &stubUpstream{}
	server := NewServer(hub, healthuc.New(upstream), zap.NewNop())
	r := chi.NewRouter()
	server.Mount(r)

	return &testEnv{router: r, hub: hub, fetcher: fetcher, upstream: upstream}
}

func makeListings(n int) []listing.Listing {
	locations := []string{"Indiranagar", "Whitefield", "Koramangala", "HSR Layout"}
	agents := []string{"Priya Menon", "Arjun Rao", "Divya Shetty"}
	out := make([]listing.Listing, n)
	for i := range out {
		out[i] = listing.Reconstruct(
			"lst-"+strconv.Itoa(i),
			"Listing "+strconv.Itoa(i),
			locations[i%len(locations)],
			agents[i%len(agents)],
			i%7,
			1000000+int64(i),
			"", "",
		)
	}
	return out
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/v1/sessions", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create session: status %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeJSON[sessionResponse](t, rr)
	if resp.SessionID == "" {
		t.Fatal("create session: empty id")
	}
	return resp.SessionID
}

func (e *testEnv) searchOK(t *testing.T, id, text string) viewResponse {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/v1/sessions/"+id+"/search", searchRequest{Text: text})
	if rr.Code != http.StatusOK {
		t.Fatalf("search: status %d: %s", rr.Code, rr.Body.String())
	}
	return decodeJSON[viewResponse](t, rr)
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func wantErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code errorCode) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d: %s", rr.Code, status, rr.Body.String())
	}
	resp := decodeJSON[errorResponse](t, rr)
	if resp.Code != code {
		t.Errorf("error code = %s, want %s", resp.Code, code)
	}
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
