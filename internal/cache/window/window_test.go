package window

import (
	"fmt"
	"testing"

	"github.com/kailas-cloud/homedex/internal/domain/batch"
	"github.com/kailas-cloud/homedex/internal/domain/listing"
)

func makeBatch(t *testing.T, offset int, ids []string, limit, count int) batch.Batch {
	t.Helper()
	items := make([]listing.Listing, len(ids))
	for i, id := range ids {
		items[i] = listing.Reconstruct(id, "t-"+id, "", "", 0, 0, "", "")
	}
	b, err := batch.New(offset, items, limit, count)
	if err != nil {
		t.Fatalf("batch.New: %v", err)
	}
	return b
}

func seqIDs(from, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("lst-%d", from+i)
	}
	return out
}

func TestMerge_AppendsInOrder(t *testing.T) {
	c := New("lin-a")

	appended := c.Merge(makeBatch(t, 0, []string{"a", "b", "c"}, 100, 437))
	if appended != 3 {
		t.Fatalf("Merge() appended = %d", appended)
	}
	if c.Size() != 3 {
		t.Errorf("Size() = %d", c.Size())
	}
	items := c.Items()
	if items[0].ID() != "a" || items[1].ID() != "b" || items[2].ID() != "c" {
		t.Error("items out of fetch order")
	}
	if c.FetchedUpTo() != 3 {
		t.Errorf("FetchedUpTo() = %d", c.FetchedUpTo())
	}
}

func TestMerge_DeduplicatesAcrossBatches(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, []string{"a", "b", "c"}, 3, 10))
	// перекрывающаяся партия: "c" уже в кэше
	appended := c.Merge(makeBatch(t, 3, []string{"c", "d"}, 3, 10))

	if appended != 1 {
		t.Errorf("Merge() appended = %d, want 1", appended)
	}
	if c.Size() != 4 {
		t.Errorf("Size() = %d, want 4", c.Size())
	}
	counts := make(map[string]int)
	for _, l := range c.Items() {
		counts[l.ID()]++
	}
	for id, n := range counts {
		if n > 1 {
			t.Errorf("id %q appears %d times", id, n)
		}
	}
}

func TestMerge_ReplayIsIdempotent(t *testing.T) {
	c := New("lin-a")
	b := makeBatch(t, 0, seqIDs(0, 5), 5, 42)

	c.Merge(b)
	sizeBefore, upToBefore := c.Size(), c.FetchedUpTo()
	hintBefore, knownBefore := c.TotalHint()

	if appended := c.Merge(b); appended != 0 {
		t.Errorf("replay appended %d records", appended)
	}
	if c.Size() != sizeBefore {
		t.Errorf("Size() changed on replay: %d -> %d", sizeBefore, c.Size())
	}
	if c.FetchedUpTo() != upToBefore {
		t.Errorf("FetchedUpTo() changed on replay: %d -> %d", upToBefore, c.FetchedUpTo())
	}
	hint, known := c.TotalHint()
	if hint != hintBefore || known != knownBefore {
		t.Errorf("TotalHint() changed on replay")
	}
}

func TestMerge_FetchedUpToMonotonic(t *testing.T) {
	c := New("lin-a")
	batches := []batch.Batch{
		makeBatch(t, 0, seqIDs(0, 100), 100, 437),
		makeBatch(t, 100, seqIDs(100, 100), 100, 437),
		makeBatch(t, 0, seqIDs(0, 100), 100, 437), // replay of the first
		makeBatch(t, 100, seqIDs(100, 50), 100, 437),
	}
	prev := 0
	for i, b := range batches {
		c.Merge(b)
		if c.FetchedUpTo() < prev {
			t.Fatalf("batch %d: FetchedUpTo went backwards: %d -> %d", i, prev, c.FetchedUpTo())
		}
		prev = c.FetchedUpTo()
	}
	if prev != 200 {
		t.Errorf("FetchedUpTo() = %d, want 200", prev)
	}
}

func TestMerge_AuthoritativeCountAdopted(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, seqIDs(0, 100), 100, 437))

	total, ok := c.TotalHint()
	if !ok || total != 437 {
		t.Errorf("TotalHint() = %d, %v; want 437, true", total, ok)
	}
	if c.Exhausted() {
		t.Error("Exhausted() = true with 100 of 437 fetched")
	}
}

func TestMerge_EchoedCountStaysUnknown(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, seqIDs(0, 100), 100, 100))

	if _, ok := c.TotalHint(); ok {
		t.Error("TotalHint() known after an echoed count")
	}
	if c.Exhausted() {
		t.Error("Exhausted() = true while total is unknown")
	}
}

func TestMerge_LargerCountWins(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, seqIDs(0, 100), 100, 400))
	c.Merge(makeBatch(t, 100, seqIDs(100, 100), 100, 450))

	if total, _ := c.TotalHint(); total != 450 {
		t.Errorf("TotalHint() = %d, want 450", total)
	}

	// меньший счётчик не затирает больший
	c.Merge(makeBatch(t, 200, seqIDs(200, 100), 100, 420))
	if total, _ := c.TotalHint(); total != 450 {
		t.Errorf("TotalHint() = %d, want 450 after smaller count", total)
	}
}

func TestMerge_EmptyBatchResolvesTotal(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, seqIDs(0, 100), 100, 100)) // unknown total
	c.Merge(makeBatch(t, 100, nil, 100, 0))            // frontier came back empty

	total, ok := c.TotalHint()
	if !ok || total != 100 {
		t.Errorf("TotalHint() = %d, %v; want 100, true", total, ok)
	}
	if !c.Exhausted() {
		t.Error("Exhausted() = false after an empty frontier batch")
	}
}

func TestMerge_EmptyBatchOverridesStaleCount(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, seqIDs(0, 100), 100, 500))
	c.Merge(makeBatch(t, 100, nil, 100, 0))

	total, ok := c.TotalHint()
	if !ok || total != 100 {
		t.Errorf("TotalHint() = %d, %v; want direct observation 100", total, ok)
	}
}

func TestMerge_ReplayedEmptyBatchBelowFrontierIgnored(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, seqIDs(0, 100), 100, 437))
	c.Merge(makeBatch(t, 50, nil, 10, 0)) // below the frontier, not an exhaustion signal

	if total, _ := c.TotalHint(); total != 437 {
		t.Errorf("TotalHint() = %d, want 437", total)
	}
}

func TestMerge_EmptyFirstBatchConfirmsEmptyResult(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, nil, 100, 0))

	total, ok := c.TotalHint()
	if !ok || total != 0 {
		t.Errorf("TotalHint() = %d, %v; want 0, true", total, ok)
	}
	if !c.Exhausted() {
		t.Error("Exhausted() = false for a confirmed empty result")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d", c.Size())
	}
}

func TestMerge_HintNeverBelowCacheSize(t *testing.T) {
	c := New("lin-a")
	// бэкенд вернул противоречивый счётчик: меньше, чем записей в ответе
	c.Merge(makeBatch(t, 0, seqIDs(0, 10), 100, 4))

	total, ok := c.TotalHint()
	if !ok || total != 10 {
		t.Errorf("TotalHint() = %d, %v; want floor at cache size 10", total, ok)
	}
}

func TestHas(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, seqIDs(0, 100), 100, 437))

	cases := []struct {
		offset, count int
		want          bool
	}{
		{0, 100, true},
		{0, 1, true},
		{99, 1, true},
		{100, 1, false},
		{0, 101, false},
		{-1, 1, false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.offset, tc.count); got != tc.want {
			t.Errorf("Has(%d, %d) = %v, want %v", tc.offset, tc.count, got, tc.want)
		}
	}
}

func TestReset(t *testing.T) {
	c := New("lin-a")
	c.Merge(makeBatch(t, 0, seqIDs(0, 100), 100, 437))

	c.Reset("lin-b")

	if c.Lineage() != "lin-b" {
		t.Errorf("Lineage() = %q", c.Lineage())
	}
	if c.Size() != 0 || c.FetchedUpTo() != 0 {
		t.Errorf("Size() = %d, FetchedUpTo() = %d after reset", c.Size(), c.FetchedUpTo())
	}
	if _, ok := c.TotalHint(); ok {
		t.Error("TotalHint() still known after reset")
	}

	// прежние id снова принимаются в новой линии
	if appended := c.Merge(makeBatch(t, 0, seqIDs(0, 3), 3, 3)); appended != 3 {
		t.Errorf("Merge() after reset appended = %d, want 3", appended)
	}
}
