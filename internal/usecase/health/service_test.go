package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockUpstreamChecker struct {
	err   error
	calls int
}

func (m *mockUpstreamChecker) HealthCheck(_ context.Context) error {
	m.calls++
	return m.err
}

// --- Tests ---

func TestCheck_Healthy(t *testing.T) {
	up := &mockUpstreamChecker{}
	svc := New(up)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["upstream"] != CheckOK {
		t.Errorf("expected upstream %q, got %q", CheckOK, r.Checks["upstream"])
	}
	if up.calls != 1 {
		t.Errorf("upstream probed %d times, want 1", up.calls)
	}
}

func TestCheck_UpstreamError(t *testing.T) {
	svc := New(&mockUpstreamChecker{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["upstream"] != CheckError {
		t.Errorf("expected upstream %q, got %q", CheckError, r.Checks["upstream"])
	}
}
