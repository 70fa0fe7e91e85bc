package blend

import (
	"math"
	"testing"

	"github.com/smallbiznis/metrica/internal/metric/domain"
	"github.com/stretchr/testify/assert"
)

func TestMRRDeltaMatchesBySourceID(t *testing.T) {
	yesterday := []domain.RankingEntry{
		{
			Label: "CSS Pro", Integration: "Stripe", SourceID: "1::11", Value: 2404.28,
			Children: []domain.RankingEntry{
				{Label: "Monthly", SourceID: "1::111", Value: 1500},
				{Label: "Yearly", SourceID: "1::112", Value: 904.28},
			},
		},
	}
	today := []domain.RankingEntry{
		{
			Label: "CSS Pro", Integration: "Stripe", SourceID: "1::11", Value: 2145.50,
			Children: []domain.RankingEntry{
				{Label: "Monthly", SourceID: "1::111", Value: 1500},
				{Label: "Yearly", SourceID: "1::112", Value: 645.50},
			},
		},
	}

	deltas := MRRDelta(today, yesterday)

	if len(deltas) != 1 {
		t.Fatalf("expected 1 delta, got %+v", deltas)
	}
	assert.InDelta(t, -258.78, deltas[0].Delta, 0.001)

	// The one changed child absorbs the whole delta; the unchanged child is
	// dropped as a zero delta.
	if len(deltas[0].Children) != 1 {
		t.Fatalf("expected 1 child delta, got %+v", deltas[0].Children)
	}
	child := deltas[0].Children[0]
	if child.SourceID != "1::112" {
		t.Fatalf("wrong child matched: %+v", child)
	}
	assert.InDelta(t, -258.78, child.Delta, 0.001)
	assert.InDelta(t, 100, child.Percentage, 0.01)
}

func TestMRRDeltaFallsBackToLabel(t *testing.T) {
	yesterday := []domain.RankingEntry{{Label: "Legacy Plan", Value: 100}}
	today := []domain.RankingEntry{{Label: "Legacy Plan", Value: 130}}

	deltas := MRRDelta(today, yesterday)
	if len(deltas) != 1 || deltas[0].Delta != 30 {
		t.Fatalf("label fallback failed: %+v", deltas)
	}
}

func TestMRRDeltaChurnAndNew(t *testing.T) {
	yesterday := []domain.RankingEntry{
		{Label: "Gone", SourceID: "1::1", Value: 400},
		{Label: "Stable", SourceID: "1::2", Value: 100},
	}
	today := []domain.RankingEntry{
		{Label: "Stable", SourceID: "1::2", Value: 100},
		{Label: "Fresh", SourceID: "1::3", Value: 250},
	}

	deltas := MRRDelta(today, yesterday)

	if len(deltas) != 2 {
		t.Fatalf("zero deltas must be dropped: %+v", deltas)
	}
	// Sorted by absolute delta descending.
	if deltas[0].Label != "Gone" || deltas[0].Delta != -400 {
		t.Fatalf("churn entry wrong: %+v", deltas[0])
	}
	if deltas[1].Label != "Fresh" || deltas[1].Delta != 250 {
		t.Fatalf("new entry wrong: %+v", deltas[1])
	}

	// Percentages are over the sum of absolute deltas, so mixed signs never
	// cancel.
	assert.InDelta(t, 400.0/650*100, deltas[0].Percentage, 0.01)
	assert.InDelta(t, 250.0/650*100, deltas[1].Percentage, 0.01)

	var pctTotal float64
	for _, d := range deltas {
		pctTotal += d.Percentage
	}
	if math.Abs(pctTotal-100) > 0.01 {
		t.Fatalf("percentages sum to %v", pctTotal)
	}
}

func TestComparisonAvailability(t *testing.T) {
	if ComparisonAvailable(domain.TypeMRR, true, 1, 2, 2) {
		t.Fatal("stock comparison with partial current coverage must be hidden")
	}
	if !ComparisonAvailable(domain.TypeMRR, true, 2, 2, 2) {
		t.Fatal("stock comparison with full coverage must be available")
	}
	if !ComparisonAvailable(domain.TypeRevenue, true, 0, 0, 2) {
		t.Fatal("flow comparison is always available when enabled")
	}
	if ComparisonAvailable(domain.TypeRevenue, false, 5, 5, 1) {
		t.Fatal("disabled comparison is never available")
	}
}
