package domain

import (
	"context"
	"errors"
	"time"
)

// DashboardRequest selects the window, accounts and compare toggle for one
// dashboard render.
type DashboardRequest struct {
	From       time.Time
	To         time.Time
	AccountIDs []string
	Compare    bool
}

// PendingFlags marks provisional data at three granularities: per metric type
// for today, per metric type for the visible range, and per (type, day,
// source) for chart-level indicators.
type PendingFlags struct {
	Today map[Type]bool                       `json:"today"`
	Range map[Type]bool                       `json:"range"`
	Daily map[Type]map[string]map[string]bool `json:"daily"`
}

// DeltaEntry is one row of the day-over-day MRR movement list. Percentage is
// relative to the sum of absolute deltas of its sibling entries.
type DeltaEntry struct {
	Label       string       `json:"label"`
	Integration string       `json:"integration"`
	SourceID    string       `json:"source_id,omitempty"`
	Delta       float64      `json:"delta"`
	Percentage  float64      `json:"percentage"`
	Children    []DeltaEntry `json:"children,omitempty"`
}

// SyncState describes the backfill orchestrator as seen by the UI.
type SyncState struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// DashboardSnapshot is one immutable render of the dashboard: everything the
// UI needs for a window, computed from the same fetch instant.
type DashboardSnapshot struct {
	Window         ComparisonWindow                   `json:"window"`
	Totals         DashboardTotals                    `json:"totals"`
	PreviousTotals *DashboardTotals                   `json:"previous_totals,omitempty"`
	Blended        map[Type][]RankingEntry            `json:"blended"`
	Accounts       map[Type][]RankingEntry            `json:"accounts"`
	Series         map[Type][]SeriesPoint             `json:"series"`
	Breakdowns     map[Type]map[string][]RankingEntry `json:"breakdowns"`
	Pending        PendingFlags                       `json:"pending"`
	MRRDelta       []DeltaEntry                       `json:"mrr_delta"`
	Comparison     map[Type]bool                      `json:"comparison"`
	Sync           SyncState                          `json:"sync"`
}

// Service renders dashboard snapshots.
type Service interface {
	GetDashboard(ctx context.Context, req DashboardRequest) (DashboardSnapshot, error)
	// InvalidateWindow drops cached snapshots that overlap the given accounts.
	InvalidateWindow(accountIDs []string)
}

var (
	ErrInvalidRange    = errors.New("invalid_range")
	ErrInvalidAccounts = errors.New("invalid_accounts")
)
