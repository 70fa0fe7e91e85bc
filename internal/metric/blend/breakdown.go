package blend

import (
	"sort"

	"github.com/smallbiznis/metrica/internal/metric/domain"
)

// DailyBreakdowns computes, per metric type and calendar day, the top-N
// contributing sources, blended by the same rule as the rankings: an account
// with product-level rows on a given day contributes its products, not its
// account total. A derived net_revenue breakdown is added per day as revenue
// entries minus platform-fee entries matched by label.
func DailyBreakdowns(rows []domain.MetricRow, labels Labels, topN int) map[domain.Type]map[string][]domain.RankingEntry {
	if topN <= 0 {
		topN = 5
	}

	perDay := daySourceAggs(rows)

	result := make(map[domain.Type]map[string][]domain.RankingEntry, len(perDay))
	for t, days := range perDay {
		byDay := make(map[string][]domain.RankingEntry, len(days))
		for day, aggs := range days {
			entries := entriesFromAggs(aggs, labels)
			disambiguate(entries)
			entries = Finalize(entries)
			if len(entries) > topN {
				entries = entries[:topN]
			}
			byDay[day] = entries
		}
		result[t] = byDay
	}

	addNetRevenue(result)
	return result
}

// DailySeries computes the per-day blended total of each metric type, for
// chart lines.
func DailySeries(rows []domain.MetricRow) map[domain.Type][]domain.SeriesPoint {
	perDay := daySourceAggs(rows)

	result := make(map[domain.Type][]domain.SeriesPoint, len(perDay))
	for t, days := range perDay {
		points := make([]domain.SeriesPoint, 0, len(days))
		for day, aggs := range days {
			var total float64
			for _, agg := range aggs {
				total += agg.value
			}
			points = append(points, domain.SeriesPoint{Day: day, Value: total})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })
		result[t] = points
	}
	return result
}

// daySourceAggs groups rows by type and day, applying the blending rule
// within each day.
func daySourceAggs(rows []domain.MetricRow) map[domain.Type]map[string]map[string]sourceAgg {
	hasProduct := make(map[domain.Type]map[string]map[string]bool)
	for _, row := range rows {
		if row.ProjectID == nil {
			continue
		}
		days, ok := hasProduct[row.Type]
		if !ok {
			days = make(map[string]map[string]bool)
			hasProduct[row.Type] = days
		}
		accounts, ok := days[row.Day()]
		if !ok {
			accounts = make(map[string]bool)
			days[row.Day()] = accounts
		}
		accounts[row.AccountID.String()] = true
	}

	perDay := make(map[domain.Type]map[string]map[string]sourceAgg)
	for _, row := range rows {
		if row.ProjectID == nil && hasProduct[row.Type][row.Day()][row.AccountID.String()] {
			continue
		}
		days, ok := perDay[row.Type]
		if !ok {
			days = make(map[string]map[string]sourceAgg)
			perDay[row.Type] = days
		}
		aggs, ok := days[row.Day()]
		if !ok {
			aggs = make(map[string]sourceAgg)
			days[row.Day()] = aggs
		}
		fold(aggs, row.Source().String(), row)
	}
	return perDay
}

// addNetRevenue derives a net_revenue breakdown per day from the revenue and
// platform-fee breakdowns. Entries present on only one side flow through with
// the missing side treated as zero; zero-valued net entries are dropped.
func addNetRevenue(breakdowns map[domain.Type]map[string][]domain.RankingEntry) {
	revenue := breakdowns[domain.TypeRevenue]
	fees := breakdowns[domain.TypePlatformFees]
	if len(revenue) == 0 && len(fees) == 0 {
		return
	}

	days := make(map[string]struct{})
	for day := range revenue {
		days[day] = struct{}{}
	}
	for day := range fees {
		days[day] = struct{}{}
	}

	net := make(map[string][]domain.RankingEntry, len(days))
	for day := range days {
		feeByLabel := make(map[string]domain.RankingEntry)
		for _, entry := range fees[day] {
			feeByLabel[entry.Label] = entry
		}

		entries := make([]domain.RankingEntry, 0, len(revenue[day]))
		seen := make(map[string]struct{})
		for _, entry := range revenue[day] {
			seen[entry.Label] = struct{}{}
			value := entry.Value - feeByLabel[entry.Label].Value
			if value == 0 {
				continue
			}
			entry.Value = value
			entry.Children = nil
			entries = append(entries, entry)
		}
		for _, entry := range fees[day] {
			if _, ok := seen[entry.Label]; ok {
				continue
			}
			if entry.Value == 0 {
				continue
			}
			entry.Value = -entry.Value
			entry.Children = nil
			entries = append(entries, entry)
		}
		if len(entries) == 0 {
			continue
		}
		net[day] = Finalize(entries)
	}

	if len(net) > 0 {
		breakdowns[domain.TypeNetRevenue] = net
	}
}
