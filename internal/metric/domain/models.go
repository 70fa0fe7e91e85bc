package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Type names a metric stream ("revenue", "mrr", ...). Connectors may ingest
// arbitrary types; the constants below are the ones the dashboard renders.
type Type string

const (
	TypeRevenue             Type = "revenue"
	TypeNetRevenue          Type = "net_revenue"
	TypeMRR                 Type = "mrr"
	TypeActiveSubscriptions Type = "active_subscriptions"
	TypeActiveTrials        Type = "active_trials"
	TypeActiveUsers         Type = "active_users"
	TypeProductsCount       Type = "products_count"
	TypeNewCustomers        Type = "new_customers"
	TypeSubscriptionRevenue Type = "subscription_revenue"
	TypeOneTimeRevenue      Type = "one_time_revenue"
	TypeSalesCount          Type = "sales_count"
	TypePlatformFees        Type = "platform_fees"
)

// stockTypes hold point-in-time snapshots: combining rows for one source
// means latest date wins, never summing.
var stockTypes = map[Type]struct{}{
	TypeMRR:                 {},
	TypeActiveSubscriptions: {},
	TypeActiveTrials:        {},
	TypeActiveUsers:         {},
	TypeProductsCount:       {},
}

// IsStock reports whether t is a snapshot metric. Everything else is a flow
// metric where summing per-period rows is correct.
func IsStock(t Type) bool {
	_, ok := stockTypes[t]
	return ok
}

// FlowKeys are the flow metrics whose absence in a window means coverage is
// missing and a backfill should be considered.
func FlowKeys() []Type {
	return []Type{
		TypeRevenue,
		TypeNewCustomers,
		TypeSubscriptionRevenue,
		TypeOneTimeRevenue,
		TypeSalesCount,
		TypePlatformFees,
	}
}

// MetricRow is one observed fact ingested by a source connector. Rows are
// immutable once written; re-syncs replace whole (account, type, date) slices.
type MetricRow struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID   `gorm:"not null;index:idx_metric_rows_window" json:"account_id"`
	ProjectID *snowflake.ID  `gorm:"index" json:"project_id,omitempty"`
	Type      Type           `gorm:"column:metric_type;not null;index:idx_metric_rows_window" json:"metric_type"`
	Date      time.Time      `gorm:"not null;index:idx_metric_rows_window" json:"date"`
	Value     float64        `gorm:"not null" json:"value"`
	Currency  string         `json:"currency,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (MetricRow) TableName() string { return "metric_rows" }

// Day returns the calendar-day key used across daily maps.
func (r MetricRow) Day() string {
	return r.Date.UTC().Format("2006-01-02")
}

// Source returns the row's canonical source identity.
func (r MetricRow) Source() SourceID {
	s := SourceID{AccountID: r.AccountID.String()}
	if r.ProjectID != nil {
		s.ProjectID = r.ProjectID.String()
	}
	return s
}

// AggregatedTotal is one row of the aggregation query: the folded value for a
// (metric type, currency) pair over a window, with the number of underlying
// rows so coverage can be judged.
type AggregatedTotal struct {
	Type     Type    `gorm:"column:metric_type" json:"metric_type"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	Count    int64   `json:"count"`
}

// DashboardTotals is the typed totals snapshot for one window. NetRevenue is
// always Revenue − PlatformFees, derived, never stored.
type DashboardTotals struct {
	Revenue             float64 `json:"revenue"`
	MRR                 float64 `json:"mrr"`
	NetRevenue          float64 `json:"net_revenue"`
	ActiveSubscriptions float64 `json:"active_subscriptions"`
	NewCustomers        float64 `json:"new_customers"`
	SubscriptionRevenue float64 `json:"subscription_revenue"`
	OneTimeRevenue      float64 `json:"one_time_revenue"`
	SalesCount          float64 `json:"sales_count"`
	PlatformFees        float64 `json:"platform_fees"`
	Currency            string  `json:"currency"`
}

// TotalsKind tags the shape of a totals input.
type TotalsKind string

const (
	TotalsAggregated TotalsKind = "aggregated"
	TotalsDaily      TotalsKind = "daily"
)

// Totals is a tagged totals input: either the server-side aggregation result
// or the raw daily rows for the current window. Consumers switch on Kind
// instead of probing shapes.
type Totals struct {
	Kind       TotalsKind        `json:"kind"`
	Aggregated []AggregatedTotal `json:"aggregated,omitempty"`
	Daily      []MetricRow       `json:"daily,omitempty"`
}

// RankingEntry is one leaderboard row. Within one ranking the percentages sum
// to ~100 whenever the total value is positive; children, when present, sum to
// the parent's value and carry percentages relative to the parent.
type RankingEntry struct {
	Label        string         `json:"label"`
	Integration  string         `json:"integration"`
	Integrations []string       `json:"integrations,omitempty"`
	Value        float64        `json:"value"`
	Percentage   float64        `json:"percentage"`
	SourceID     string         `json:"source_id,omitempty"`
	Children     []RankingEntry `json:"children,omitempty"`
}

// SeriesPoint is one day of a chart series.
type SeriesPoint struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

// ComparisonWindow pairs a window with its immediately preceding window of
// identical day count (no gap, no overlap).
type ComparisonWindow struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	PrevFrom time.Time `json:"prev_from"`
	PrevTo   time.Time `json:"prev_to"`
}

// NewComparisonWindow derives the previous window: prevTo = from − 1 day,
// prevFrom = prevTo − (dayCount − 1) days.
func NewComparisonWindow(from, to time.Time) ComparisonWindow {
	from = from.UTC().Truncate(24 * time.Hour)
	to = to.UTC().Truncate(24 * time.Hour)
	dayCount := int(to.Sub(from).Hours()/24) + 1
	prevTo := from.AddDate(0, 0, -1)
	prevFrom := prevTo.AddDate(0, 0, -(dayCount - 1))
	return ComparisonWindow{From: from, To: to, PrevFrom: prevFrom, PrevTo: prevTo}
}

// DayCount returns the number of calendar days in the current window.
func (w ComparisonWindow) DayCount() int {
	return int(w.To.Sub(w.From).Hours()/24) + 1
}
