package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
)

// Trigger issues one backfill request toward a connector. It either succeeds,
// after which callers refetch, or fails with a human-readable message that may
// embed a cooldown in seconds ("wait 42s").
type Trigger interface {
	Backfill(ctx context.Context, accountID string, from time.Time) error
}

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateError   State = "error"
)

// Status is the orchestrator state exposed to consumers.
type Status struct {
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

type WindowKind string

const (
	WindowCurrent  WindowKind = "current"
	WindowPrevious WindowKind = "prev"
)

// WindowKey identifies one backfillable window. Only one backfill may be in
// flight per key; distinct windows proceed independently.
func WindowKey(kind WindowKind, from, to time.Time, accountIDs []string) string {
	return string(kind) + ":" + from.Format("2006-01-02") + ":" + to.Format("2006-01-02") + ":" + strings.Join(accountIDs, ",")
}

// NeedsBackfill decides, from per-type row counts, whether a window is missing
// coverage: true iff the window is set, at least one account is selected, and
// any flow metric has zero rows. Stock metrics never trigger a backfill on
// their own.
func NeedsBackfill(counts map[metricdomain.Type]int64, accounts int, hasWindow bool) bool {
	if !hasWindow || accounts < 1 {
		return false
	}
	for _, key := range metricdomain.FlowKeys() {
		if counts[key] == 0 {
			return true
		}
	}
	return false
}

var (
	ErrCooldown = errors.New("backfill_cooldown")
	ErrRunning  = errors.New("backfill_running")
)
