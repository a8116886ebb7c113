package listings

import (
	"context"
	"testing"

	"github.com/kailas-cloud/homedex/internal/transport/houndapi"
)

// mockSearcher implements the consumer interface for tests.
type mockSearcher struct {
	searchFn func(ctx context.Context, req houndapi.SearchRequest) (houndapi.SearchPage, error)
	lastReq  houndapi.SearchRequest
}

func (m *mockSearcher) Search(ctx context.Context, req houndapi.SearchRequest) (houndapi.SearchPage, error) {
	m.lastReq = req
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return houndapi.SearchPage{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockSearcher) {
	t.Helper()
	ms := &mockSearcher{}
	return New(ms), ms
}
