package blend

import (
	"time"

	"github.com/smallbiznis/metrica/internal/metric/domain"
)

// Rankings holds the per-type leaderboards. Blended prefers product-level
// detail per account; Accounts is the account-only view kept as a fallback
// when blending finds nothing more granular.
type Rankings struct {
	Blended  map[domain.Type][]domain.RankingEntry
	Accounts map[domain.Type][]domain.RankingEntry
}

type sourceAgg struct {
	value float64
	date  time.Time
}

// fold combines a row into an aggregate: latest date wins for stock metrics,
// flow metrics sum.
func fold(aggs map[string]sourceAgg, key string, row domain.MetricRow) {
	agg := aggs[key]
	if domain.IsStock(row.Type) {
		if agg.date.IsZero() || !row.Date.Before(agg.date) {
			agg.value = row.Value
			agg.date = row.Date
		}
	} else {
		agg.value += row.Value
	}
	aggs[key] = agg
}

// BuildRankings aggregates a window of rows into blended and account-level
// leaderboards per metric type. A dollar reported both as an account total and
// inside one of the account's products is counted once: accounts with any
// product-level row for a type contribute only their product entries.
func BuildRankings(rows []domain.MetricRow, labels Labels) Rankings {
	accountAggs := make(map[domain.Type]map[string]sourceAgg)
	productAggs := make(map[domain.Type]map[string]sourceAgg)
	hasProduct := make(map[domain.Type]map[string]bool)

	for _, row := range rows {
		accountID := row.AccountID.String()
		if row.ProjectID != nil {
			aggs, ok := productAggs[row.Type]
			if !ok {
				aggs = make(map[string]sourceAgg)
				productAggs[row.Type] = aggs
			}
			fold(aggs, row.Source().String(), row)

			accounts, ok := hasProduct[row.Type]
			if !ok {
				accounts = make(map[string]bool)
				hasProduct[row.Type] = accounts
			}
			accounts[accountID] = true
			continue
		}

		aggs, ok := accountAggs[row.Type]
		if !ok {
			aggs = make(map[string]sourceAgg)
			accountAggs[row.Type] = aggs
		}
		fold(aggs, domain.BuildSourceID(accountID, ""), row)
	}

	types := make(map[domain.Type]struct{}, len(accountAggs)+len(productAggs))
	for t := range accountAggs {
		types[t] = struct{}{}
	}
	for t := range productAggs {
		types[t] = struct{}{}
	}

	result := Rankings{
		Blended:  make(map[domain.Type][]domain.RankingEntry, len(types)),
		Accounts: make(map[domain.Type][]domain.RankingEntry, len(types)),
	}

	for t := range types {
		accountEntries := entriesFromAggs(accountAggs[t], labels)
		result.Accounts[t] = Finalize(accountEntries)

		if len(hasProduct[t]) == 0 {
			// No account has product detail for this type; the blended view
			// is exactly the account view.
			blended := entriesFromAggs(accountAggs[t], labels)
			disambiguate(blended)
			result.Blended[t] = Finalize(blended)
			continue
		}

		blended := entriesFromAggs(productAggs[t], labels)
		for key, agg := range accountAggs[t] {
			source := domain.ParseSourceID(key)
			if hasProduct[t][source.AccountID] {
				continue
			}
			blended = append(blended, entryFromAgg(key, agg, labels))
		}
		disambiguate(blended)
		result.Blended[t] = Finalize(blended)
	}

	return result
}

func entriesFromAggs(aggs map[string]sourceAgg, labels Labels) []domain.RankingEntry {
	entries := make([]domain.RankingEntry, 0, len(aggs))
	for key, agg := range aggs {
		entries = append(entries, entryFromAgg(key, agg, labels))
	}
	return entries
}

func entryFromAgg(key string, agg sourceAgg, labels Labels) domain.RankingEntry {
	source := domain.ParseSourceID(key)
	label := labels.accountLabel(source.AccountID)
	if !source.IsAccountLevel() {
		label = labels.projectLabel(source.ProjectID)
	}
	return domain.RankingEntry{
		Label:       label,
		Integration: labels.integration(source.AccountID),
		Value:       agg.value,
		SourceID:    key,
	}
}
