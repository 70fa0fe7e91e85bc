package merge

import (
	"sort"

	"github.com/smallbiznis/metrica/internal/metric/blend"
	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
)

// Apply folds grouped entries into one entry per group and re-ranks. The total
// value of the list is preserved; merging only relabels and re-percentages.
// With no groups configured the input slice is returned untouched, same
// reference, so callers can cheaply detect the no-op.
func Apply(entries []metricdomain.RankingEntry, lookup Lookup, idx LabelIndex) []metricdomain.RankingEntry {
	if lookup.Empty() || len(entries) == 0 {
		return entries
	}

	grouped := make(map[string][]metricdomain.RankingEntry)
	var ungrouped []metricdomain.RankingEntry
	matched := false

	for _, entry := range entries {
		key, ok := MatchSourceByLabel(entry.Label, idx)
		if !ok {
			ungrouped = append(ungrouped, entry)
			continue
		}
		groupID, ok := lookup.MemberToGroup[key]
		if !ok {
			ungrouped = append(ungrouped, entry)
			continue
		}
		grouped[groupID] = append(grouped[groupID], entry)
		matched = true
	}

	if !matched {
		return entries
	}

	merged := make([]metricdomain.RankingEntry, 0, len(ungrouped)+len(grouped))
	merged = append(merged, ungrouped...)

	groupIDs := make([]string, 0, len(grouped))
	for id := range grouped {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	for _, groupID := range groupIDs {
		merged = append(merged, mergeGroup(lookup.Groups[groupID], grouped[groupID]))
	}

	return blend.Finalize(merged)
}

func mergeGroup(info GroupInfo, members []metricdomain.RankingEntry) metricdomain.RankingEntry {
	var total float64
	seen := make(map[string]struct{})
	names := append([]string(nil), info.Integrations...)
	for _, name := range names {
		seen[name] = struct{}{}
	}

	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	for _, member := range members {
		total += member.Value
		add(member.Integration)
		for _, name := range member.Integrations {
			add(name)
		}
	}
	sort.Strings(names)

	entry := metricdomain.RankingEntry{
		Label:        info.Name,
		Value:        total,
		Integrations: names,
	}
	if len(names) > 0 {
		entry.Integration = names[0]
	}

	if len(members) >= 2 {
		children := append([]metricdomain.RankingEntry(nil), members...)
		sort.SliceStable(children, func(i, j int) bool {
			if children[i].Value != children[j].Value {
				return children[i].Value > children[j].Value
			}
			return children[i].Label < children[j].Label
		})
		for i := range children {
			if total > 0 {
				children[i].Percentage = children[i].Value / total * 100
			} else {
				children[i].Percentage = 0
			}
		}
		entry.Children = children
	}
	return entry
}

// ApplyRankings merges every per-type ranking. With no groups the input map is
// returned as-is, preserving reference identity.
func ApplyRankings(rankings map[metricdomain.Type][]metricdomain.RankingEntry, lookup Lookup, idx LabelIndex) map[metricdomain.Type][]metricdomain.RankingEntry {
	if lookup.Empty() || len(rankings) == 0 {
		return rankings
	}
	out := make(map[metricdomain.Type][]metricdomain.RankingEntry, len(rankings))
	for t, entries := range rankings {
		out[t] = Apply(entries, lookup, idx)
	}
	return out
}

// ApplyDaily merges each day's breakdown independently, so breakdown rows
// respect the same grouping the totals do.
func ApplyDaily(days map[metricdomain.Type]map[string][]metricdomain.RankingEntry, lookup Lookup, idx LabelIndex) map[metricdomain.Type]map[string][]metricdomain.RankingEntry {
	if lookup.Empty() || len(days) == 0 {
		return days
	}
	out := make(map[metricdomain.Type]map[string][]metricdomain.RankingEntry, len(days))
	for t, byDay := range days {
		merged := make(map[string][]metricdomain.RankingEntry, len(byDay))
		for day, entries := range byDay {
			merged[day] = Apply(entries, lookup, idx)
		}
		out[t] = merged
	}
	return out
}
