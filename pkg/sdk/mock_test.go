package homedex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/homedex/internal/domain/listing"
	"github.com/kailas-cloud/homedex/internal/domain/search/query"
	"github.com/kailas-cloud/homedex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/homedex/internal/usecase/health"
)

// --- browseUseCase mock ---

type mockBrowseUC struct {
	viewFn         func() browse.View
	searchFn       func(ctx context.Context, text string, structured map[string]string) (browse.View, error)
	goToPageFn     func(ctx context.Context, n int) (browse.View, error)
	goToNextFn     func(ctx context.Context) (browse.View, error)
	goToPreviousFn func(ctx context.Context) (browse.View, error)
	setFiltersFn   func(location, agent, bedrooms string, exactMatch bool) (browse.View, error)
	resetFiltersFn func() (browse.View, error)
	retryFn        func(ctx context.Context) (browse.View, error)
	resetFn        func() browse.View
	suggestFn      func(field, input string, limit int) ([]string, error)
	locationsFn    func() []string
	agentsFn       func() []string
	closed         bool
}

func (m *mockBrowseUC) View() browse.View {
	return m.viewFn()
}

func (m *mockBrowseUC) Search(
	ctx context.Context, text string, structured map[string]string,
) (browse.View, error) {
	return m.searchFn(ctx, text, structured)
}

func (m *mockBrowseUC) GoToPage(ctx context.Context, n int) (browse.View, error) {
	return m.goToPageFn(ctx, n)
}

func (m *mockBrowseUC) GoToNext(ctx context.Context) (browse.View, error) {
	return m.goToNextFn(ctx)
}

func (m *mockBrowseUC) GoToPrevious(ctx context.Context) (browse.View, error) {
	return m.goToPreviousFn(ctx)
}

func (m *mockBrowseUC) SetFilters(
	location, agent, bedrooms string, exactMatch bool,
) (browse.View, error) {
	return m.setFiltersFn(location, agent, bedrooms, exactMatch)
}

func (m *mockBrowseUC) ResetFilters() (browse.View, error) {
	return m.resetFiltersFn()
}

func (m *mockBrowseUC) Retry(ctx context.Context) (browse.View, error) {
	return m.retryFn(ctx)
}

func (m *mockBrowseUC) Reset() browse.View {
	return m.resetFn()
}

func (m *mockBrowseUC) Suggest(field, input string, limit int) ([]string, error) {
	return m.suggestFn(field, input, limit)
}

func (m *mockBrowseUC) Locations() []string {
	return m.locationsFn()
}

func (m *mockBrowseUC) Agents() []string {
	return m.agentsFn()
}

func (m *mockBrowseUC) PageSize() int { return 20 }

func (m *mockBrowseUC) Close() { m.closed = true }

// --- healthUseCase mock ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}

// --- upstreamPinger mock ---

type mockPinger struct {
	err   error
	calls int
}

func (m *mockPinger) HealthCheck(context.Context) error {
	m.calls++
	return m.err
}

// --- helpers ---

func testBrowser(svc browseUseCase) *Browser {
	return &Browser{svc: svc}
}

func readyView(records ...listing.Listing) browse.View {
	return browse.View{
		State:         browse.StateReady,
		Records:       records,
		PageNumber:    1,
		PageSize:      20,
		FilteredCount: len(records),
	}
}

func testListing(id string) listing.Listing {
	return listing.Reconstruct(id, "Listing "+id, "Indiranagar", "Priya Menon", 2, 4200000, "", "")
}

func mustQuery(t *testing.T, text string, filters map[string]string) query.Query {
	t.Helper()
	q, err := query.New(text, filters)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	return q
}
