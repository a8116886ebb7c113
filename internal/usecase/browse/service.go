package browse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/homedex/internal/cache/window"
	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/listing"
	"github.com/kailas-cloud/homedex/internal/domain/search/page"
	"github.com/kailas-cloud/homedex/internal/domain/search/query"
	"github.com/kailas-cloud/homedex/internal/domain/search/refine"
	"github.com/kailas-cloud/homedex/internal/domain/search/suggest"
	"github.com/kailas-cloud/homedex/internal/metrics"
)

// Default sizing, aligned with the config defaults.
const (
	DefaultPageSize  = 20
	DefaultBatchSize = 100
)

// Service is the pagination controller: the single owner of browse
// state for one user session. All mutation happens through its
// transition methods under one lock; the rendering layer only ever
// sees immutable View snapshots.
//
// Fetch discipline: at most one fetch per lineage is in flight at a
// time. Foreground fetches block the calling goroutine (never the
// controller); prefetches run in the background and are skipped while
// another fetch is outstanding. A foreground request for an offset
// already being prefetched joins that flight instead of duplicating
// it. Every resolution checks its lineage token before touching state.
type Service struct {
	fetcher   Fetcher
	pageSize  int
	batchSize int
	logger    *zap.Logger

	flights singleflight.Group

	mu            sync.Mutex
	state         State
	query         query.Query
	filters       refine.Filters
	pg            page.Page
	cache         *window.Cache
	lastErr       error
	lineage       string
	lineageCtx    context.Context
	cancelLineage context.CancelFunc
	inFlight      bool
}

// New creates a browse controller. Page size defaults to
// DefaultPageSize, batch size to DefaultBatchSize; a batch smaller
// than a page is raised to one page so a batch always covers at least
// one display window.
func New(fetcher Fetcher, pageSize, batchSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < pageSize {
		batchSize = pageSize
	}
	return &Service{
		fetcher:   fetcher,
		pageSize:  pageSize,
		batchSize: batchSize,
		logger:    zap.NewNop(),
		state:     StateIdle,
		pg:        page.Reconstruct(1, pageSize),
		cache:     window.New(""),
	}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// PageSize returns the configured display window size.
func (s *Service) PageSize() int { return s.pageSize }

// BatchSize returns the configured backend fetch size.
func (s *Service) BatchSize() int { return s.batchSize }

// View returns the current snapshot without mutating anything.
func (s *Service) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Search starts a new lineage: cancels any in-flight fetch for the
// previous one, resets the cache, and fetches the first batch in the
// foreground. Submitting the same query again refreshes it. Client
// filters survive a new search; the page resets to 1.
func (s *Service) Search(ctx context.Context, text string, structured map[string]string) (View, error) {
	q, err := query.New(text, structured)
	if err != nil {
		return s.View(), fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}

	s.mu.Lock()
	s.beginLineageLocked(q)
	lin, lctx := s.lineage, s.lineageCtx
	s.mu.Unlock()

	metrics.BrowseLineagesTotal.Inc()
	s.logger.Debug("Search started",
		zap.String("lineage", lin),
		zap.String("query", q.Text()),
		zap.Int("structured_filters", len(q.Structured())),
	)

	return s.fetchUntilCovered(ctx, lctx, lin)
}

// GoToPage navigates to the 1-based page n. Navigation satisfied by
// the cache is a pure re-slice; a jump past the fetch frontier blocks
// on foreground fetches until the page is covered or the backend runs
// out. Events arriving while a search or another jump is in flight, or
// in the error state, are ignored and answered with the current view.
func (s *Service) GoToPage(ctx context.Context, n int) (View, error) {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
		v := s.snapshot()
		s.mu.Unlock()
		return v, domain.ErrNoActiveSearch
	case StateSearching, StatePaginating, StateError:
		v := s.snapshot()
		s.mu.Unlock()
		return v, nil
	}
	if n < 1 {
		v := s.snapshot()
		s.mu.Unlock()
		return v, fmt.Errorf("%w: page %d", domain.ErrPageOutOfRange, n)
	}

	s.pg = page.Reconstruct(n, s.pageSize)
	plan := s.scheduleLocked()
	if !plan.Blocking {
		v := s.snapshot()
		s.maybePrefetchLocked(plan)
		s.mu.Unlock()
		return v, nil
	}

	s.state = StatePaginating
	lin, lctx := s.lineage, s.lineageCtx
	s.mu.Unlock()

	return s.fetchUntilCovered(ctx, lctx, lin)
}

// GoToNext navigates forward one page. A no-op when the view reports
// no next page.
func (s *Service) GoToNext(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.state == StateIdle {
		v := s.snapshot()
		s.mu.Unlock()
		return v, domain.ErrNoActiveSearch
	}
	v := s.snapshot()
	n := s.pg.Number()
	s.mu.Unlock()

	if !v.HasNext {
		return v, nil
	}
	return s.GoToPage(ctx, n+1)
}

// GoToPrevious navigates back one page. A no-op on page 1.
func (s *Service) GoToPrevious(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.state == StateIdle {
		v := s.snapshot()
		s.mu.Unlock()
		return v, domain.ErrNoActiveSearch
	}
	v := s.snapshot()
	n := s.pg.Number()
	s.mu.Unlock()

	if n <= 1 {
		return v, nil
	}
	return s.GoToPage(ctx, n-1)
}

// SetFilters replaces the whole client filter set. Resets to page 1
// and re-slices the cache; never touches the network.
func (s *Service) SetFilters(location, agent, bedrooms string, exactMatch bool) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyFiltersLocked(location, agent, bedrooms, exactMatch)
}

// SetLocationFilter updates the location filter only.
func (s *Service) SetLocationFilter(v string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyFiltersLocked(v, s.filters.Agent(), s.filters.BedroomsLabel(), s.filters.ExactMatch())
}

// SetAgentFilter updates the agent filter only.
func (s *Service) SetAgentFilter(v string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyFiltersLocked(s.filters.Location(), v, s.filters.BedroomsLabel(), s.filters.ExactMatch())
}

// SetBedroomsFilter updates the bedrooms filter only.
func (s *Service) SetBedroomsFilter(v string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyFiltersLocked(s.filters.Location(), s.filters.Agent(), v, s.filters.ExactMatch())
}

// SetExactMatch switches string filters between substring and exact
// matching.
func (s *Service) SetExactMatch(v bool) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyFiltersLocked(s.filters.Location(), s.filters.Agent(), s.filters.BedroomsLabel(), v)
}

// ResetFilters clears every client filter.
func (s *Service) ResetFilters() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyFiltersLocked("", "", "", false)
}

// applyFiltersLocked validates and installs a filter set, snapping the
// view back to page 1 of the narrowed list. Invalid input changes
// nothing.
func (s *Service) applyFiltersLocked(location, agent, bedrooms string, exactMatch bool) (View, error) {
	f, err := refine.New(location, agent, bedrooms, exactMatch)
	if err != nil {
		return s.snapshot(), fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}
	s.filters = f
	s.pg = page.Reconstruct(1, s.pageSize)
	return s.snapshot(), nil
}

// Retry re-issues the fetch that put the controller into the error
// state: same lineage, same frontier. Only valid in the error state.
func (s *Service) Retry(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.state != StateError {
		v := s.snapshot()
		s.mu.Unlock()
		return v, domain.ErrRetryNotAllowed
	}
	s.lastErr = nil
	if s.cache.Size() == 0 && s.pg.Number() == 1 {
		s.state = StateSearching
	} else {
		s.state = StatePaginating
	}
	lin, lctx := s.lineage, s.lineageCtx
	s.mu.Unlock()

	return s.fetchUntilCovered(ctx, lctx, lin)
}

// Reset returns the controller to the landing state: lineage
// cancelled, cache and filters cleared.
func (s *Service) Reset() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelLineage != nil {
		s.cancelLineage()
		s.cancelLineage = nil
		s.lineageCtx = nil
	}
	s.lineage = ""
	s.cache.Reset("")
	s.query = query.Query{}
	s.filters = refine.Filters{}
	s.pg = page.Reconstruct(1, s.pageSize)
	s.state = StateIdle
	s.lastErr = nil
	s.inFlight = false
	return s.snapshot()
}

// Close cancels any in-flight work. The controller is unusable after.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelLineage != nil {
		s.cancelLineage()
		s.cancelLineage = nil
	}
}

// Locations returns the distinct non-empty locations of the cached
// listings in fetch order, for populating filter dropdowns.
func (s *Service) Locations() []string {
	return s.distinct(func(l *listing.Listing) string { return l.Location() })
}

// Agents returns the distinct non-empty agents of the cached listings
// in fetch order.
func (s *Service) Agents() []string {
	return s.distinct(func(l *listing.Listing) string { return l.Agent() })
}

// Suggest fuzzy-ranks distinct cached values of a filterable field
// against partial input, for did-you-mean hints when a filter matches
// nothing. Field is "location" or "agent".
func (s *Service) Suggest(field, input string, limit int) ([]string, error) {
	switch field {
	case "location":
		return suggest.Rank(input, s.Locations(), limit), nil
	case "agent":
		return suggest.Rank(input, s.Agents(), limit), nil
	default:
		return nil, fmt.Errorf("%w: unknown suggest field %q", domain.ErrInvalidFilter, field)
	}
}

func (s *Service) distinct(pick func(*listing.Listing) string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var out []string
	items := s.cache.Items()
	for i := range items {
		v := pick(&items[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// beginLineageLocked starts a fresh lineage. Caller holds s.mu.
func (s *Service) beginLineageLocked(q query.Query) {
	if s.cancelLineage != nil {
		s.cancelLineage()
	}
	s.lineage = uuid.NewString()
	s.lineageCtx, s.cancelLineage = context.WithCancel(context.Background())
	s.cache.Reset(s.lineage)
	s.query = q
	s.pg = page.Reconstruct(1, s.pageSize)
	s.state = StateSearching
	s.lastErr = nil
	s.inFlight = false
}

// scheduleLocked runs the prefetch scheduler against current state.
// Caller holds s.mu.
func (s *Service) scheduleLocked() Plan {
	total, known := s.cache.TotalHint()
	return Schedule(s.pg, s.batchSize, s.cache.FetchedUpTo(), total, known)
}

// fetchUntilCovered drives foreground fetches at the frontier until
// the current page renders from cache, the backend is exhausted, or a
// fetch fails. Every nonempty batch advances the frontier and an empty
// one resolves the total, so the loop terminates.
func (s *Service) fetchUntilCovered(ctx context.Context, lctx context.Context, lin string) (View, error) {
	for {
		s.mu.Lock()
		if s.lineage != lin {
			v := s.snapshot()
			s.mu.Unlock()
			metrics.BrowseStaleDropsTotal.Inc()
			return v, nil
		}
		plan := s.scheduleLocked()
		if !plan.Blocking {
			s.state = StateReady
			v := s.snapshot()
			s.maybePrefetchLocked(plan)
			s.mu.Unlock()
			return v, nil
		}
		q := s.query
		offset := plan.Offset
		s.inFlight = true
		s.mu.Unlock()

		b, err := s.fetchShared(ctx, lctx, lin, q, offset, "foreground")

		s.mu.Lock()
		if s.lineage != lin {
			v := s.snapshot()
			s.mu.Unlock()
			metrics.BrowseStaleDropsTotal.Inc()
			return v, nil
		}
		s.inFlight = false
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// вызов отменён самим клиентом; состояние не трогаем
				v := s.snapshot()
				s.mu.Unlock()
				return v, err
			}
			s.state = StateError
			s.lastErr = err
			v := s.snapshot()
			s.mu.Unlock()
			return v, err
		}
		appended := s.cache.Merge(b)
		metrics.BrowseRecordsDedupedTotal.Add(float64(b.Len() - appended))
		s.mu.Unlock()
	}
}

// maybePrefetchLocked spawns a background fetch when the plan calls
// for one and no other fetch for the lineage is outstanding. Caller
// holds s.mu.
func (s *Service) maybePrefetchLocked(plan Plan) {
	if !plan.Prefetch || s.inFlight || s.state != StateReady {
		return
	}
	lin, lctx, q, offset := s.lineage, s.lineageCtx, s.query, plan.Offset
	s.inFlight = true
	go s.prefetch(lctx, lin, q, offset)
}

// prefetch fetches the next batch in the background. Failures are
// logged and swallowed: the feature is an optimization, and the next
// navigation that needs the data retries it as a blocking fetch.
func (s *Service) prefetch(lctx context.Context, lin string, q query.Query, offset int) {
	b, err := s.fetchShared(lctx, lctx, lin, q, offset, "prefetch")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lineage == lin {
		s.inFlight = false
	}
	if err != nil {
		if lctx.Err() == nil {
			s.logger.Warn("Prefetch failed",
				zap.String("lineage", lin),
				zap.Int("offset", offset),
				zap.Error(err),
			)
		}
		return
	}
	if s.lineage != lin {
		metrics.BrowseStaleDropsTotal.Inc()
		return
	}
	appended := s.cache.Merge(b)
	metrics.BrowseRecordsDedupedTotal.Add(float64(b.Len() - appended))
	s.logger.Debug("Prefetch merged",
		zap.String("lineage", lin),
		zap.Int("offset", offset),
		zap.Int("appended", appended),
	)
}

// fetchShared executes one backend fetch, deduplicated per
// (lineage, offset): concurrent foreground and prefetch requests for
// the same offset share a single transport call. The flight runs under
// the lineage context so a new search aborts it at the transport
// level; each waiter additionally unblocks on its own context.
func (s *Service) fetchShared(
	callerCtx, lctx context.Context, lin string,
	q query.Query, offset int, kind string,
) (batch.Batch, error) {
	waitCtx, cancel := context.WithCancel(callerCtx)
	defer cancel()
	stop := context.AfterFunc(lctx, cancel)
	defer stop()

	key := lin + ":" + strconv.Itoa(offset)
	ch := s.flights.DoChan(key, func() (any, error) {
		start := time.Now()
		b, err := s.fetcher.FetchBatch(lctx, q, offset, s.batchSize)
		metrics.BrowseFetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err != nil {
			status := "error"
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				status = "cancelled"
			}
			metrics.BrowseFetchesTotal.WithLabelValues(kind, status).Inc()
			return nil, err
		}
		metrics.BrowseFetchesTotal.WithLabelValues(kind, "ok").Inc()
		metrics.BrowseRecordsFetchedTotal.Add(float64(b.Len()))
		return b, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return batch.Batch{}, res.Err
		}
		return res.Val.(batch.Batch), nil
	case <-waitCtx.Done():
		return batch.Batch{}, waitCtx.Err()
	}
}
