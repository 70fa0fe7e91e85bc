// Package blend is the pure computation core of the dashboard: it turns raw
// per-source metric rows into totals, deduplicated rankings, daily breakdowns,
// pending flags and day-over-day deltas. Everything here is deterministic and
// side-effect free, safe to re-run on every input change.
package blend

import (
	"sort"

	"github.com/smallbiznis/metrica/internal/metric/domain"
)

// ProjectInfo describes one product of an integration account.
type ProjectInfo struct {
	Label     string
	AccountID string
}

// Labels carries the display lookups the engine needs: account and product
// labels plus the integration (provider) name per account.
type Labels struct {
	Accounts     map[string]string      // account id -> display label
	Integrations map[string]string      // account id -> integration name
	Projects     map[string]ProjectInfo // project id -> label + owning account
}

func (l Labels) accountLabel(accountID string) string {
	if label, ok := l.Accounts[accountID]; ok && label != "" {
		return label
	}
	return accountID
}

func (l Labels) projectLabel(projectID string) string {
	if info, ok := l.Projects[projectID]; ok && info.Label != "" {
		return info.Label
	}
	return projectID
}

func (l Labels) integration(accountID string) string {
	return l.Integrations[accountID]
}

// disambiguate appends " (IntegrationName)" to entries whose label is shared
// by sources from different integrations, so two products that happen to have
// the same name stay tellable apart.
func disambiguate(entries []domain.RankingEntry) {
	byLabel := make(map[string]map[string]struct{})
	for _, entry := range entries {
		set, ok := byLabel[entry.Label]
		if !ok {
			set = make(map[string]struct{})
			byLabel[entry.Label] = set
		}
		set[entry.Integration] = struct{}{}
	}

	for i := range entries {
		if len(byLabel[entries[i].Label]) > 1 {
			entries[i].Label = entries[i].Label + " (" + entries[i].Integration + ")"
		}
	}
}

// Finalize sorts entries by value descending and recomputes percentages over
// the list total. A non-positive total yields zero percentages.
func Finalize(entries []domain.RankingEntry) []domain.RankingEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Label < entries[j].Label
	})

	var total float64
	for _, entry := range entries {
		total += entry.Value
	}
	for i := range entries {
		if total > 0 {
			entries[i].Percentage = entries[i].Value / total * 100
		} else {
			entries[i].Percentage = 0
		}
	}
	return entries
}
