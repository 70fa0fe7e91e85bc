package blend

import (
	"testing"

	"github.com/smallbiznis/metrica/internal/metric/domain"
)

func TestDailyBreakdownsKeepsTopN(t *testing.T) {
	labels := Labels{
		Accounts:     map[string]string{"1": "A1", "2": "A2", "3": "A3", "4": "A4", "5": "A5", "6": "A6", "7": "A7"},
		Integrations: map[string]string{},
		Projects:     map[string]ProjectInfo{},
	}
	rows := []domain.MetricRow{
		row(t, 1, 0, domain.TypeRevenue, "2026-02-01", 700),
		row(t, 2, 0, domain.TypeRevenue, "2026-02-01", 600),
		row(t, 3, 0, domain.TypeRevenue, "2026-02-01", 500),
		row(t, 4, 0, domain.TypeRevenue, "2026-02-01", 400),
		row(t, 5, 0, domain.TypeRevenue, "2026-02-01", 300),
		row(t, 6, 0, domain.TypeRevenue, "2026-02-01", 200),
		row(t, 7, 0, domain.TypeRevenue, "2026-02-01", 100),
	}

	breakdowns := DailyBreakdowns(rows, labels, 5)

	entries := breakdowns[domain.TypeRevenue]["2026-02-01"]
	if len(entries) != 5 {
		t.Fatalf("expected top 5, got %d entries", len(entries))
	}
	if entries[0].Label != "A1" || entries[4].Label != "A5" {
		t.Fatalf("unexpected order: first %q last %q", entries[0].Label, entries[4].Label)
	}
}

func TestDailyBreakdownsBlendPerDay(t *testing.T) {
	// Account 1 has product detail on the 1st but only an account total on
	// the 2nd; blending is decided per day.
	rows := []domain.MetricRow{
		row(t, 1, 0, domain.TypeRevenue, "2026-02-01", 500),
		row(t, 1, 11, domain.TypeRevenue, "2026-02-01", 500),
		row(t, 1, 0, domain.TypeRevenue, "2026-02-02", 400),
	}

	breakdowns := DailyBreakdowns(rows, testLabels(), 5)

	day1 := breakdowns[domain.TypeRevenue]["2026-02-01"]
	if len(day1) != 1 || day1[0].Label != "CSS Pro" {
		t.Fatalf("day 1 should be the product entry only: %+v", day1)
	}
	day2 := breakdowns[domain.TypeRevenue]["2026-02-02"]
	if len(day2) != 1 || day2[0].Label != "Stripe Main" {
		t.Fatalf("day 2 should fall back to the account entry: %+v", day2)
	}
}

func TestDailyBreakdownsDerivesNetRevenue(t *testing.T) {
	rows := []domain.MetricRow{
		row(t, 1, 0, domain.TypeRevenue, "2026-02-01", 500),
		row(t, 1, 0, domain.TypePlatformFees, "2026-02-01", 50),
		row(t, 2, 0, domain.TypePlatformFees, "2026-02-01", 30),
	}

	breakdowns := DailyBreakdowns(rows, testLabels(), 5)

	net := breakdowns[domain.TypeNetRevenue]["2026-02-01"]
	if len(net) != 2 {
		t.Fatalf("expected 2 net entries, got %+v", net)
	}
	values := map[string]float64{}
	for _, entry := range net {
		values[entry.Label] = entry.Value
	}
	if values["Stripe Main"] != 450 {
		t.Fatalf("Stripe Main net = %v, want 450", values["Stripe Main"])
	}
	// Fee-only entries flow through as negative net revenue.
	if values["Gumroad Shop"] != -30 {
		t.Fatalf("Gumroad Shop net = %v, want -30", values["Gumroad Shop"])
	}
}

func TestDailyBreakdownsDropsZeroNetEntries(t *testing.T) {
	rows := []domain.MetricRow{
		row(t, 1, 0, domain.TypeRevenue, "2026-02-01", 100),
		row(t, 1, 0, domain.TypePlatformFees, "2026-02-01", 100),
	}

	breakdowns := DailyBreakdowns(rows, testLabels(), 5)
	if entries := breakdowns[domain.TypeNetRevenue]["2026-02-01"]; len(entries) != 0 {
		t.Fatalf("zero net entries must be dropped, got %+v", entries)
	}
}

func TestDailySeriesSumsBlendedValues(t *testing.T) {
	rows := []domain.MetricRow{
		row(t, 1, 0, domain.TypeRevenue, "2026-02-01", 500),
		row(t, 1, 11, domain.TypeRevenue, "2026-02-01", 300),
		row(t, 1, 12, domain.TypeRevenue, "2026-02-01", 100),
		row(t, 2, 0, domain.TypeRevenue, "2026-02-02", 250),
	}

	series := DailySeries(rows)

	points := series[domain.TypeRevenue]
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %+v", points)
	}
	if points[0].Day != "2026-02-01" || points[0].Value != 400 {
		t.Fatalf("day 1 point %+v, want blended 400", points[0])
	}
	if points[1].Day != "2026-02-02" || points[1].Value != 250 {
		t.Fatalf("day 2 point %+v", points[1])
	}
}
