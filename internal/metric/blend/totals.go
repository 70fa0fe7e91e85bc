package blend

import "github.com/smallbiznis/metrica/internal/metric/domain"

const defaultCurrency = "USD"

// ExtractTotals builds the typed totals snapshot from tagged inputs. The
// aggregated input supplies every field; when a daily input for the current
// window is present, flow fields are recomputed by summing its rows instead,
// because a just-finished backfill may have written rows the server-side
// aggregate does not reflect yet. Stock fields always come from the aggregate.
// NetRevenue is derived last and never read from an input.
func ExtractTotals(inputs []domain.Totals) domain.DashboardTotals {
	byType := make(map[domain.Type]domain.AggregatedTotal)
	currency := ""
	var daily []domain.MetricRow
	haveDaily := false

	for _, input := range inputs {
		switch input.Kind {
		case domain.TotalsAggregated:
			for _, row := range input.Aggregated {
				byType[row.Type] = row
				if currency == "" && row.Currency != "" {
					currency = row.Currency
				}
			}
		case domain.TotalsDaily:
			daily = input.Daily
			haveDaily = true
		}
	}
	if currency == "" {
		currency = defaultCurrency
	}

	totals := domain.DashboardTotals{
		Revenue:             byType[domain.TypeRevenue].Total,
		MRR:                 byType[domain.TypeMRR].Total,
		ActiveSubscriptions: byType[domain.TypeActiveSubscriptions].Total,
		NewCustomers:        byType[domain.TypeNewCustomers].Total,
		SubscriptionRevenue: byType[domain.TypeSubscriptionRevenue].Total,
		OneTimeRevenue:      byType[domain.TypeOneTimeRevenue].Total,
		SalesCount:          byType[domain.TypeSalesCount].Total,
		PlatformFees:        byType[domain.TypePlatformFees].Total,
		Currency:            currency,
	}

	if haveDaily {
		sums := make(map[domain.Type]float64)
		for _, row := range daily {
			if domain.IsStock(row.Type) {
				continue
			}
			sums[row.Type] += row.Value
		}
		totals.Revenue = sums[domain.TypeRevenue]
		totals.NewCustomers = sums[domain.TypeNewCustomers]
		totals.SubscriptionRevenue = sums[domain.TypeSubscriptionRevenue]
		totals.OneTimeRevenue = sums[domain.TypeOneTimeRevenue]
		totals.SalesCount = sums[domain.TypeSalesCount]
		totals.PlatformFees = sums[domain.TypePlatformFees]
	}

	totals.NetRevenue = totals.Revenue - totals.PlatformFees
	return totals
}
