package domain

import (
	"testing"
	"time"

	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
)

func fullCounts() map[metricdomain.Type]int64 {
	counts := make(map[metricdomain.Type]int64)
	for _, key := range metricdomain.FlowKeys() {
		counts[key] = 5
	}
	return counts
}

func TestNeedsBackfill(t *testing.T) {
	counts := fullCounts()
	if NeedsBackfill(counts, 2, true) {
		t.Fatal("full coverage must not need backfill")
	}

	counts[metricdomain.TypeSalesCount] = 0
	if !NeedsBackfill(counts, 2, true) {
		t.Fatal("one empty flow key must need backfill")
	}

	if NeedsBackfill(counts, 0, true) {
		t.Fatal("no selected accounts must not need backfill")
	}
	if NeedsBackfill(counts, 2, false) {
		t.Fatal("unset window must not need backfill")
	}

	// Stock coverage is judged separately and never triggers a backfill.
	counts = fullCounts()
	counts[metricdomain.TypeMRR] = 0
	if NeedsBackfill(counts, 2, true) {
		t.Fatal("missing stock rows must not need backfill")
	}
}

func TestWindowKey(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)

	key := WindowKey(WindowCurrent, from, to, []string{"1", "2"})
	if key != "current:2026-02-01:2026-02-07:1,2" {
		t.Fatalf("key %q", key)
	}

	prev := WindowKey(WindowPrevious, from, to, []string{"1", "2"})
	if prev == key {
		t.Fatal("current and previous keys must differ")
	}
}
