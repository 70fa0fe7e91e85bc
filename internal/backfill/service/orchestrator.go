package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/smallbiznis/metrica/internal/backfill/domain"
	"github.com/smallbiznis/metrica/internal/clock"
	"github.com/smallbiznis/metrica/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// cooldownPattern matches connector errors that embed a retry delay, e.g.
// "rate limited, wait 42s before retrying".
var cooldownPattern = regexp.MustCompile(`wait (\d+)s`)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Trigger domain.Trigger
	Metrics *metrics.Metrics `optional:"true"`
}

// Orchestrator serializes backfills per window key. One backfill may be in
// flight per key; repeat triggers for a running key are no-ops, and keys under
// cooldown are rejected until the cooldown passes.
type Orchestrator struct {
	log     *zap.Logger
	clock   clock.Clock
	trigger domain.Trigger
	metrics *metrics.Metrics

	mu       sync.Mutex
	inflight map[string]struct{}
	cooldown map[string]time.Time
	state    domain.State
	lastErr  string

	onComplete func()
}

func NewOrchestrator(p Params) *Orchestrator {
	return &Orchestrator{
		log:      p.Log.Named("backfill.orchestrator"),
		clock:    p.Clock,
		trigger:  p.Trigger,
		metrics:  p.Metrics,
		inflight: make(map[string]struct{}),
		cooldown: make(map[string]time.Time),
		state:    domain.StateIdle,
	}
}

// OnComplete registers the refresh callback fired after a successful run.
func (o *Orchestrator) OnComplete(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onComplete = fn
}

func (o *Orchestrator) Status() domain.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return domain.Status{State: o.state, Error: o.lastErr}
}

// Run executes one backfill for the given window key, fanning out over the
// selected accounts. It blocks until every account request finished or one
// failed.
func (o *Orchestrator) Run(ctx context.Context, key string, kind domain.WindowKind, accountIDs []string, from time.Time) error {
	o.mu.Lock()
	if _, running := o.inflight[key]; running {
		o.mu.Unlock()
		return nil
	}
	if until, ok := o.cooldown[key]; ok {
		if remaining := until.Sub(o.clock.Now()); remaining > 0 {
			o.mu.Unlock()
			o.metrics.RecordBackfillCooldown(ctx, string(kind))
			return fmt.Errorf("%w: retry in %ds", domain.ErrCooldown, int(remaining.Seconds())+1)
		}
		delete(o.cooldown, key)
	}
	o.inflight[key] = struct{}{}
	o.state = domain.StateRunning
	o.lastErr = ""
	o.mu.Unlock()

	o.metrics.RecordBackfillTriggered(ctx, string(kind))

	for _, accountID := range accountIDs {
		if err := o.trigger.Backfill(ctx, accountID, from); err != nil {
			o.fail(key, err)
			return err
		}
	}

	o.mu.Lock()
	delete(o.inflight, key)
	o.state = domain.StateIdle
	done := o.onComplete
	o.mu.Unlock()

	if done != nil {
		done()
	}
	return nil
}

// fail releases the window key so a later window can retry independently; a
// key must never stay marked in-flight after the cooldown path.
func (o *Orchestrator) fail(key string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.inflight, key)
	o.state = domain.StateError
	o.lastErr = err.Error()

	if m := cooldownPattern.FindStringSubmatch(err.Error()); m != nil {
		seconds, convErr := strconv.Atoi(m[1])
		if convErr == nil && seconds > 0 {
			o.cooldown[key] = o.clock.Now().Add(time.Duration(seconds) * time.Second)
			o.log.Warn("backfill cooling down",
				zap.String("window_key", key),
				zap.Int("seconds", seconds),
			)
			return
		}
	}
	o.log.Error("backfill failed", zap.String("window_key", key), zap.Error(err))
}
