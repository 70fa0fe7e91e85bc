package blend

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/metrica/internal/metric/domain"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return parsed.UTC()
}

func row(t *testing.T, account, project int64, metricType domain.Type, date string, value float64) domain.MetricRow {
	t.Helper()
	r := domain.MetricRow{
		AccountID: snowflake.ID(account),
		Type:      metricType,
		Date:      day(t, date),
		Value:     value,
		Currency:  "USD",
	}
	if project != 0 {
		id := snowflake.ID(project)
		r.ProjectID = &id
	}
	return r
}

func testLabels() Labels {
	return Labels{
		Accounts: map[string]string{
			"1": "Stripe Main",
			"2": "Gumroad Shop",
		},
		Integrations: map[string]string{
			"1": "Stripe",
			"2": "Gumroad",
		},
		Projects: map[string]ProjectInfo{
			"11": {Label: "CSS Pro", AccountID: "1"},
			"12": {Label: "Starter Kit", AccountID: "1"},
			"21": {Label: "CSS Pro", AccountID: "2"},
			"22": {Label: "Other Product", AccountID: "2"},
		},
	}
}

func rankingTotal(entries []domain.RankingEntry) float64 {
	var total float64
	for _, entry := range entries {
		total += entry.Value
	}
	return total
}

func percentageTotal(entries []domain.RankingEntry) float64 {
	var total float64
	for _, entry := range entries {
		total += entry.Percentage
	}
	return total
}
