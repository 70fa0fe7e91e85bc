package blend

import (
	"testing"

	"github.com/smallbiznis/metrica/internal/metric/domain"
)

func TestExtractTotalsFromAggregates(t *testing.T) {
	totals := ExtractTotals([]domain.Totals{
		{
			Kind: domain.TotalsAggregated,
			Aggregated: []domain.AggregatedTotal{
				{Type: domain.TypeRevenue, Total: 1200, Currency: "EUR", Count: 14},
				{Type: domain.TypeMRR, Total: 900, Currency: "EUR", Count: 7},
				{Type: domain.TypePlatformFees, Total: 200, Currency: "EUR", Count: 14},
			},
		},
	})

	if totals.Revenue != 1200 || totals.MRR != 900 || totals.PlatformFees != 200 {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if totals.NetRevenue != 1000 {
		t.Fatalf("net revenue = %v, want revenue - fees = 1000", totals.NetRevenue)
	}
	if totals.Currency != "EUR" {
		t.Fatalf("currency = %q", totals.Currency)
	}
}

func TestExtractTotalsDefaults(t *testing.T) {
	totals := ExtractTotals(nil)
	if totals.Revenue != 0 || totals.MRR != 0 || totals.NetRevenue != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
	if totals.Currency != "USD" {
		t.Fatalf("currency defaults to USD, got %q", totals.Currency)
	}
}

func TestExtractTotalsDailyOverridesFlowFields(t *testing.T) {
	// A fresh backfill wrote rows the server-side aggregate has not folded in
	// yet: daily rows win for flow fields, the aggregate stays authoritative
	// for stock fields.
	totals := ExtractTotals([]domain.Totals{
		{
			Kind: domain.TotalsAggregated,
			Aggregated: []domain.AggregatedTotal{
				{Type: domain.TypeRevenue, Total: 800, Currency: "USD", Count: 5},
				{Type: domain.TypeMRR, Total: 950, Currency: "USD", Count: 5},
			},
		},
		{
			Kind: domain.TotalsDaily,
			Daily: []domain.MetricRow{
				row(t, 1, 0, domain.TypeRevenue, "2026-02-01", 600),
				row(t, 1, 0, domain.TypeRevenue, "2026-02-02", 400),
				row(t, 1, 0, domain.TypeMRR, "2026-02-02", 111),
			},
		},
	})

	if totals.Revenue != 1000 {
		t.Fatalf("revenue = %v, want daily sum 1000", totals.Revenue)
	}
	if totals.MRR != 950 {
		t.Fatalf("mrr = %v, stock fields must come from the aggregate", totals.MRR)
	}
	if totals.NetRevenue != 1000 {
		t.Fatalf("net revenue = %v", totals.NetRevenue)
	}
}
