// Package merge folds ranking entries that belong to the same user-defined
// project group into a single entry. It runs after blending, purely on display
// data: rankings carry labels rather than raw ids, so membership is resolved
// through label lookup tables.
package merge

import (
	"sort"

	"github.com/smallbiznis/metrica/internal/metric/blend"
	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
	"github.com/smallbiznis/metrica/internal/projectgroup/domain"
)

// GroupInfo is the display side of one group.
type GroupInfo struct {
	Name         string
	Integrations []string
}

// Lookup indexes group membership by source key. Rebuilt from scratch whenever
// groups or accounts change; never mutated incrementally.
type Lookup struct {
	MemberToGroup map[string]string // source key -> group id
	Groups        map[string]GroupInfo
}

func (l Lookup) Empty() bool {
	return len(l.MemberToGroup) == 0 || len(l.Groups) == 0
}

// BuildLookup derives a Lookup from the stored groups plus the account ->
// integration name mapping.
func BuildLookup(groups []domain.ProjectGroup, integrations map[string]string) (Lookup, error) {
	lookup := Lookup{
		MemberToGroup: make(map[string]string),
		Groups:        make(map[string]GroupInfo),
	}

	for _, group := range groups {
		members, err := group.MemberList()
		if err != nil {
			return Lookup{}, err
		}
		if len(members) == 0 {
			continue
		}

		groupID := group.ID.String()
		seen := make(map[string]struct{})
		var names []string
		for _, member := range members {
			key := metricdomain.BuildSourceID(member.AccountID, member.ProjectID)
			lookup.MemberToGroup[key] = groupID

			if name := integrations[member.AccountID]; name != "" {
				if _, ok := seen[name]; !ok {
					seen[name] = struct{}{}
					names = append(names, name)
				}
			}
		}
		sort.Strings(names)
		lookup.Groups[groupID] = GroupInfo{Name: group.Name, Integrations: names}
	}

	return lookup, nil
}

// LabelIndex maps display labels back to source keys. Needed because ranking
// entries only carry labels.
type LabelIndex struct {
	ProductByLabel map[string]string // product label -> "accountID::projectID"
	AccountByLabel map[string]string // account label -> "accountID::"
}

// BuildLabelIndex inverts the label maps used during blending. When two
// sources share a label the last one wins; the disambiguation suffix handling
// in MatchSourceByLabel covers the cases that matter in practice.
func BuildLabelIndex(labels blend.Labels) LabelIndex {
	idx := LabelIndex{
		ProductByLabel: make(map[string]string),
		AccountByLabel: make(map[string]string),
	}
	for projectID, info := range labels.Projects {
		if info.Label == "" {
			continue
		}
		idx.ProductByLabel[info.Label] = metricdomain.BuildSourceID(info.AccountID, projectID)
	}
	for accountID, label := range labels.Accounts {
		if label == "" {
			continue
		}
		idx.AccountByLabel[label] = metricdomain.BuildSourceID(accountID, "")
	}
	return idx
}

// MatchSourceByLabel resolves a ranking label to a source key: exact product
// label first, then exact account label, then one retry with a trailing
// " (...)" disambiguation suffix stripped. A product whose real name ends in a
// parenthesized word, like "Starter (Beta)", can therefore match its base name
// after stripping; acceptable, since the base form only exists in the index
// when such a product is actually configured.
func MatchSourceByLabel(label string, idx LabelIndex) (string, bool) {
	if key, ok := idx.ProductByLabel[label]; ok {
		return key, true
	}
	if key, ok := idx.AccountByLabel[label]; ok {
		return key, true
	}

	if base, ok := stripSuffix(label); ok {
		if key, ok := idx.ProductByLabel[base]; ok {
			return key, true
		}
		if key, ok := idx.AccountByLabel[base]; ok {
			return key, true
		}
	}
	return "", false
}

func stripSuffix(label string) (string, bool) {
	if len(label) < 4 || label[len(label)-1] != ')' {
		return "", false
	}
	for i := len(label) - 2; i > 1; i-- {
		if label[i] == '(' {
			if label[i-1] != ' ' {
				return "", false
			}
			return label[:i-1], true
		}
	}
	return "", false
}
