package blend

import (
	"math"
	"sort"

	"github.com/smallbiznis/metrica/internal/metric/domain"
)

// MRRDelta diffs two blended MRR rankings (today vs. yesterday) per source.
// Entries match by SourceID when both sides carry one, falling back to label:
// the same product can surface under different parent groupings and must still
// be recognized as one source. An entry present only yesterday is churn (fully
// negative delta); only today, fully positive. Zero deltas are dropped, the
// rest are sorted by absolute delta, and percentages are taken over the sum of
// absolute deltas so gains and losses never cancel each other's bars.
func MRRDelta(today, yesterday []domain.RankingEntry) []domain.DeltaEntry {
	matched := make([]bool, len(yesterday))

	deltas := make([]domain.DeltaEntry, 0, len(today)+len(yesterday))
	for _, entry := range today {
		prev, ok := matchEntry(entry, yesterday, matched)
		delta := entry.Value
		var children []domain.DeltaEntry
		if ok {
			delta = entry.Value - prev.Value
			children = MRRDelta(entry.Children, prev.Children)
		} else {
			children = MRRDelta(entry.Children, nil)
		}
		if delta == 0 {
			continue
		}
		deltas = append(deltas, domain.DeltaEntry{
			Label:       entry.Label,
			Integration: entry.Integration,
			SourceID:    entry.SourceID,
			Delta:       delta,
			Children:    children,
		})
	}

	for i, entry := range yesterday {
		if matched[i] || entry.Value == 0 {
			continue
		}
		deltas = append(deltas, domain.DeltaEntry{
			Label:       entry.Label,
			Integration: entry.Integration,
			SourceID:    entry.SourceID,
			Delta:       -entry.Value,
			Children:    MRRDelta(nil, entry.Children),
		})
	}

	sort.SliceStable(deltas, func(i, j int) bool {
		return math.Abs(deltas[i].Delta) > math.Abs(deltas[j].Delta)
	})

	var absTotal float64
	for _, d := range deltas {
		absTotal += math.Abs(d.Delta)
	}
	for i := range deltas {
		if absTotal > 0 {
			deltas[i].Percentage = math.Abs(deltas[i].Delta) / absTotal * 100
		}
	}

	return deltas
}

func matchEntry(entry domain.RankingEntry, candidates []domain.RankingEntry, matched []bool) (domain.RankingEntry, bool) {
	if entry.SourceID != "" {
		for i, candidate := range candidates {
			if !matched[i] && candidate.SourceID != "" && candidate.SourceID == entry.SourceID {
				matched[i] = true
				return candidate, true
			}
		}
	}
	for i, candidate := range candidates {
		if !matched[i] && candidate.Label == entry.Label {
			matched[i] = true
			return candidate, true
		}
	}
	return domain.RankingEntry{}, false
}
