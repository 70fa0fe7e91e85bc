package blend

import (
	"testing"

	"github.com/smallbiznis/metrica/internal/metric/domain"
	"gorm.io/datatypes"
)

func pendingRow(t *testing.T, account int64, metricType domain.Type, date string, value float64) domain.MetricRow {
	t.Helper()
	r := row(t, account, 0, metricType, date, value)
	r.Metadata = datatypes.JSON([]byte(`{"pending":true}`))
	return r
}

func TestIsPendingRow(t *testing.T) {
	plain := row(t, 1, 0, domain.TypeRevenue, "2026-02-01", 10)
	if IsPendingRow(plain) {
		t.Fatal("row without metadata must not be pending")
	}

	malformed := plain
	malformed.Metadata = datatypes.JSON([]byte(`{not json`))
	if IsPendingRow(malformed) {
		t.Fatal("unparsable metadata must not be pending")
	}

	if !IsPendingRow(pendingRow(t, 1, domain.TypeRevenue, "2026-02-01", 10)) {
		t.Fatal("expected pending row")
	}
}

func TestComputePendingGranularities(t *testing.T) {
	now := day(t, "2026-02-07")
	rows := []domain.MetricRow{
		pendingRow(t, 1, domain.TypeRevenue, "2026-02-07", 10),
		row(t, 2, 0, domain.TypeRevenue, "2026-02-07", 20),
		pendingRow(t, 1, domain.TypeMRR, "2026-02-05", 100),
	}

	flags := ComputePending(rows, day(t, "2026-02-07"), now)

	if !flags.Today[domain.TypeRevenue] {
		t.Fatal("revenue should be pending today")
	}
	if flags.Today[domain.TypeMRR] {
		t.Fatal("an old pending row must not flag today")
	}
	if !flags.Range[domain.TypeRevenue] || !flags.Range[domain.TypeMRR] {
		t.Fatalf("range flags missing: %+v", flags.Range)
	}
	if !flags.Daily[domain.TypeMRR]["2026-02-05"]["1::"] {
		t.Fatalf("daily flag missing: %+v", flags.Daily)
	}
}

func TestComputePendingRangeOnlyWhenEndingToday(t *testing.T) {
	now := day(t, "2026-02-10")
	rows := []domain.MetricRow{
		pendingRow(t, 1, domain.TypeRevenue, "2026-02-05", 10),
	}

	flags := ComputePending(rows, day(t, "2026-02-07"), now)
	if len(flags.Range) != 0 {
		t.Fatalf("range flags must be empty for historical windows: %+v", flags.Range)
	}
}

func TestComputePendingZeroTodayHadYesterday(t *testing.T) {
	now := day(t, "2026-02-07")
	rows := []domain.MetricRow{
		row(t, 1, 0, domain.TypeRevenue, "2026-02-06", 10),
	}

	flags := ComputePending(rows, now, now)
	if !flags.Today[domain.TypeRevenue] {
		t.Fatal("a type with rows yesterday but none today is pending, not zero")
	}
}
