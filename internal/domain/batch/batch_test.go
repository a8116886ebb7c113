package batch

import (
	"strconv"
	"testing"

	"github.com/kailas-cloud/homedex/internal/domain/listing"
)

func makeItems(t *testing.T, n int) []listing.Listing {
	t.Helper()
	out := make([]listing.Listing, n)
	for i := range out {
		out[i] = listing.Reconstruct("lst-"+strconv.Itoa(i), "t", "", "", 0, 0, "", "")
	}
	return out
}

func TestNew_Valid(t *testing.T) {
	items := makeItems(t, 3)
	b, err := New(100, items, 100, 250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Offset() != 100 {
		t.Errorf("Offset() = %d", b.Offset())
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d", b.Len())
	}
	if b.RequestedLimit() != 100 {
		t.Errorf("RequestedLimit() = %d", b.RequestedLimit())
	}
	if b.End() != 103 {
		t.Errorf("End() = %d", b.End())
	}
}

func TestNew_Invalid(t *testing.T) {
	items := makeItems(t, 1)
	if _, err := New(-1, items, 100, 0); err == nil {
		t.Error("expected error for negative offset")
	}
	if _, err := New(0, items, 0, 0); err == nil {
		t.Error("expected error for zero limit")
	}
	if _, err := New(0, items, 100, -5); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestTotalHint_CountDiffersFromLen(t *testing.T) {
	b, _ := New(0, makeItems(t, 100), 100, 437)
	total, ok := b.TotalHint()
	if !ok || total != 437 {
		t.Errorf("TotalHint() = %d, %v; want 437, true", total, ok)
	}
}

func TestTotalHint_CountEchoesLen(t *testing.T) {
	// backend that cannot compute totals echoes the item count
	b, _ := New(0, makeItems(t, 100), 100, 100)
	if _, ok := b.TotalHint(); ok {
		t.Error("TotalHint() ok = true for an echoed count")
	}
}

func TestTotalHint_ShortBatchEchoedCountStillUnknown(t *testing.T) {
	b, _ := New(0, makeItems(t, 40), 100, 40)
	if _, ok := b.TotalHint(); ok {
		t.Error("a short batch alone must not resolve the total")
	}
}

func TestTotalHint_EmptyBatchResolvesToOffset(t *testing.T) {
	b, _ := New(200, nil, 100, 0)
	total, ok := b.TotalHint()
	if !ok || total != 200 {
		t.Errorf("TotalHint() = %d, %v; want 200, true", total, ok)
	}
}

func TestTotalHint_EmptyFirstBatchIsZero(t *testing.T) {
	b, _ := New(0, nil, 100, 0)
	total, ok := b.TotalHint()
	if !ok || total != 0 {
		t.Errorf("TotalHint() = %d, %v; want 0, true", total, ok)
	}
}
