package domain

import "testing"

func TestSourceIDRoundTrip(t *testing.T) {
	cases := []struct {
		accountID string
		projectID string
	}{
		{"1907959214402109440", ""},
		{"1907959214402109440", "1907959214402109441"},
		{"acct_stripe", "prod_css"},
	}

	for _, tc := range cases {
		key := BuildSourceID(tc.accountID, tc.projectID)
		parsed := ParseSourceID(key)
		if parsed.AccountID != tc.accountID || parsed.ProjectID != tc.projectID {
			t.Fatalf("round trip of %q/%q gave %+v", tc.accountID, tc.projectID, parsed)
		}
	}
}

func TestSourceIDAccountLevel(t *testing.T) {
	if !ParseSourceID("a::").IsAccountLevel() {
		t.Fatal("expected account-level source")
	}
	if ParseSourceID("a::p").IsAccountLevel() {
		t.Fatal("expected product-level source")
	}
}

func TestComparisonWindowDerivation(t *testing.T) {
	w := NewComparisonWindow(mustDay(t, "2026-02-01"), mustDay(t, "2026-02-07"))
	if w.DayCount() != 7 {
		t.Fatalf("expected 7 days, got %d", w.DayCount())
	}
	if got := w.PrevTo.Format("2006-01-02"); got != "2026-01-31" {
		t.Fatalf("prevTo = %s", got)
	}
	if got := w.PrevFrom.Format("2006-01-02"); got != "2026-01-25" {
		t.Fatalf("prevFrom = %s", got)
	}
}
