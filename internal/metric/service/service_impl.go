package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	backfilldomain "github.com/smallbiznis/metrica/internal/backfill/domain"
	backfillservice "github.com/smallbiznis/metrica/internal/backfill/service"
	"github.com/smallbiznis/metrica/internal/cache"
	"github.com/smallbiznis/metrica/internal/clock"
	"github.com/smallbiznis/metrica/internal/config"
	integrationdomain "github.com/smallbiznis/metrica/internal/integration/domain"
	"github.com/smallbiznis/metrica/internal/metric/blend"
	"github.com/smallbiznis/metrica/internal/metric/domain"
	"github.com/smallbiznis/metrica/internal/observability/metrics"
	projectgroupdomain "github.com/smallbiznis/metrica/internal/projectgroup/domain"
	"github.com/smallbiznis/metrica/internal/projectgroup/merge"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	LC           fx.Lifecycle `optional:"true"`
	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Holder       *config.DashboardConfigHolder
	Repo         domain.Repository
	Integrations integrationdomain.Service
	Groups       projectgroupdomain.Service
	Orchestrator *backfillservice.Orchestrator
	Snapshots    cache.SnapshotCache
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	holder       *config.DashboardConfigHolder
	repo         domain.Repository
	integrations integrationdomain.Service
	groups       projectgroupdomain.Service
	orchestrator *backfillservice.Orchestrator
	snapshots    cache.SnapshotCache
	metrics      *metrics.Metrics
	refresh      *backfillservice.Debouncer
}

func New(p Params) domain.Service {
	s := &Service{
		db:           p.DB,
		log:          p.Log.Named("metric.service"),
		clock:        p.Clock,
		holder:       p.Holder,
		repo:         p.Repo,
		integrations: p.Integrations,
		groups:       p.Groups,
		orchestrator: p.Orchestrator,
		snapshots:    p.Snapshots,
		metrics:      p.Metrics,
	}

	// Backfill completions arrive in per-account bursts; coalesce them into
	// one cache flush so consumers refetch a single consistent batch.
	s.refresh = backfillservice.NewDebouncer(p.Holder.Get().RefreshDebounce, func() {
		s.snapshots.InvalidateAccounts(nil)
	})
	s.orchestrator.OnComplete(s.refresh.Trigger)

	if p.LC != nil {
		p.LC.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				s.refresh.Stop()
				return nil
			},
		})
	}
	return s
}

func (s *Service) InvalidateWindow(accountIDs []string) {
	s.snapshots.InvalidateAccounts(accountIDs)
}

func (s *Service) GetDashboard(ctx context.Context, req domain.DashboardRequest) (domain.DashboardSnapshot, error) {
	if req.From.IsZero() || req.To.IsZero() || req.To.Before(req.From) {
		return domain.DashboardSnapshot{}, domain.ErrInvalidRange
	}
	if len(req.AccountIDs) == 0 {
		return domain.DashboardSnapshot{}, domain.ErrInvalidAccounts
	}

	accountIDs, err := parseAccountIDs(req.AccountIDs)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}

	cfg := s.holder.Get()
	key := cache.SnapshotKey(req.From, req.To, req.AccountIDs, req.Compare)
	if snap, ok := s.snapshots.Get(key); ok {
		return snap, nil
	}

	window := domain.NewComparisonWindow(req.From, req.To)

	labels, err := s.loadLabels(ctx, req.AccountIDs)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}

	currentQuery := domain.WindowQuery{From: window.From, To: window.To, AccountIDs: accountIDs}
	prevQuery := domain.WindowQuery{From: window.PrevFrom, To: window.PrevTo, AccountIDs: accountIDs}

	rows, err := s.repo.ListRows(ctx, s.db, currentQuery)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}
	aggregated, err := s.repo.AggregateTotals(ctx, s.db, currentQuery)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}
	currentCounts, err := s.repo.CountByType(ctx, s.db, currentQuery)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}

	snap := domain.DashboardSnapshot{
		Window: window,
		Totals: blend.ExtractTotals([]domain.Totals{
			{Kind: domain.TotalsAggregated, Aggregated: aggregated},
			{Kind: domain.TotalsDaily, Daily: rows},
		}),
	}

	rankings := blend.BuildRankings(rows, labels)

	lookup, idx, err := s.loadGroups(ctx, labels)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}
	snap.Blended = merge.ApplyRankings(rankings.Blended, lookup, idx)
	snap.Accounts = rankings.Accounts
	snap.Series = blend.DailySeries(rows)
	snap.Breakdowns = merge.ApplyDaily(blend.DailyBreakdowns(rows, labels, cfg.TopNBreakdown), lookup, idx)
	snap.Pending = blend.ComputePending(rows, window.To, s.clock.Now())

	delta, err := s.mrrDelta(ctx, accountIDs, labels, lookup, idx)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}
	snap.MRRDelta = delta

	var prevCounts map[domain.Type]int64
	if req.Compare {
		prevCounts, err = s.repo.CountByType(ctx, s.db, prevQuery)
		if err != nil {
			return domain.DashboardSnapshot{}, err
		}
		prevAggregated, err := s.repo.AggregateTotals(ctx, s.db, prevQuery)
		if err != nil {
			return domain.DashboardSnapshot{}, err
		}
		prevTotals := blend.ExtractTotals([]domain.Totals{
			{Kind: domain.TotalsAggregated, Aggregated: prevAggregated},
		})
		snap.PreviousTotals = &prevTotals
	}
	snap.Comparison = s.comparison(req.Compare, currentCounts, prevCounts, int64(len(accountIDs)))

	s.maybeBackfill(ctx, req, window, currentCounts, prevCounts)
	snap.Sync = syncState(s.orchestrator.Status())

	s.metrics.RecordDashboardRender(ctx, string(backfilldomain.WindowCurrent))
	s.snapshots.Set(key, snap, cfg.CacheTTL)
	return snap, nil
}

func parseAccountIDs(raw []string) ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(raw))
	for _, value := range raw {
		id, err := snowflake.ParseString(value)
		if err != nil {
			return nil, domain.ErrInvalidAccounts
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// loadLabels builds the display lookups for the selected accounts from the
// integration registry.
func (s *Service) loadLabels(ctx context.Context, accountIDs []string) (blend.Labels, error) {
	selected := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		selected[id] = struct{}{}
	}

	accounts, err := s.integrations.ListAccounts(ctx)
	if err != nil {
		return blend.Labels{}, err
	}
	products, err := s.integrations.ListProducts(ctx, accountIDs)
	if err != nil {
		return blend.Labels{}, err
	}

	labels := blend.Labels{
		Accounts:     make(map[string]string),
		Integrations: make(map[string]string),
		Projects:     make(map[string]blend.ProjectInfo),
	}
	for _, account := range accounts {
		id := account.ID.String()
		if _, ok := selected[id]; !ok {
			continue
		}
		labels.Accounts[id] = account.Label
		labels.Integrations[id] = account.Provider
	}
	for _, product := range products {
		labels.Projects[product.ID.String()] = blend.ProjectInfo{
			Label:     product.Label,
			AccountID: product.AccountID.String(),
		}
	}
	return labels, nil
}

func (s *Service) loadGroups(ctx context.Context, labels blend.Labels) (merge.Lookup, merge.LabelIndex, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return merge.Lookup{}, merge.LabelIndex{}, err
	}
	lookup, err := merge.BuildLookup(groups, labels.Integrations)
	if err != nil {
		return merge.Lookup{}, merge.LabelIndex{}, err
	}
	return lookup, merge.BuildLabelIndex(labels), nil
}

// mrrDelta diffs today's blended MRR ranking against yesterday's. Group
// merging runs first on both sides so moves between groupings do not read as
// revenue swings.
func (s *Service) mrrDelta(ctx context.Context, accountIDs []snowflake.ID, labels blend.Labels, lookup merge.Lookup, idx merge.LabelIndex) ([]domain.DeltaEntry, error) {
	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	rows, err := s.repo.ListRows(ctx, s.db, domain.WindowQuery{
		From:       yesterday,
		To:         today,
		AccountIDs: accountIDs,
	})
	if err != nil {
		return nil, err
	}

	todayKey := today.Format("2006-01-02")
	var todayRows, yesterdayRows []domain.MetricRow
	for _, row := range rows {
		if row.Type != domain.TypeMRR {
			continue
		}
		if row.Day() == todayKey {
			todayRows = append(todayRows, row)
		} else {
			yesterdayRows = append(yesterdayRows, row)
		}
	}
	if len(todayRows) == 0 && len(yesterdayRows) == 0 {
		return nil, nil
	}

	todayRanking := merge.Apply(blend.BuildRankings(todayRows, labels).Blended[domain.TypeMRR], lookup, idx)
	yesterdayRanking := merge.Apply(blend.BuildRankings(yesterdayRows, labels).Blended[domain.TypeMRR], lookup, idx)
	return blend.MRRDelta(todayRanking, yesterdayRanking), nil
}

func (s *Service) comparison(enabled bool, currentCounts, prevCounts map[domain.Type]int64, expectedAccounts int64) map[domain.Type]bool {
	types := append(domain.FlowKeys(),
		domain.TypeNetRevenue,
		domain.TypeMRR,
		domain.TypeActiveSubscriptions,
		domain.TypeActiveTrials,
		domain.TypeActiveUsers,
		domain.TypeProductsCount,
	)

	availability := make(map[domain.Type]bool, len(types))
	for _, t := range types {
		key := t
		if t == domain.TypeNetRevenue {
			// Derived from revenue and fees; revenue coverage decides.
			key = domain.TypeRevenue
		}
		availability[t] = blend.ComparisonAvailable(key, enabled, currentCounts[key], prevCounts[key], expectedAccounts)
	}
	return availability
}

// maybeBackfill kicks off re-fetches for windows with missing flow coverage.
// Runs detach from the request so a slow connector never blocks a render.
func (s *Service) maybeBackfill(ctx context.Context, req domain.DashboardRequest, window domain.ComparisonWindow, currentCounts, prevCounts map[domain.Type]int64) {
	accounts := len(req.AccountIDs)
	detached := context.WithoutCancel(ctx)

	if backfilldomain.NeedsBackfill(currentCounts, accounts, true) {
		key := backfilldomain.WindowKey(backfilldomain.WindowCurrent, window.From, window.To, req.AccountIDs)
		go func() {
			if err := s.orchestrator.Run(detached, key, backfilldomain.WindowCurrent, req.AccountIDs, window.From); err != nil {
				s.log.Warn("current window backfill", zap.String("window_key", key), zap.Error(err))
			}
		}()
	}

	if req.Compare && backfilldomain.NeedsBackfill(prevCounts, accounts, true) {
		key := backfilldomain.WindowKey(backfilldomain.WindowPrevious, window.PrevFrom, window.PrevTo, req.AccountIDs)
		go func() {
			if err := s.orchestrator.Run(detached, key, backfilldomain.WindowPrevious, req.AccountIDs, window.PrevFrom); err != nil {
				s.log.Warn("comparison window backfill", zap.String("window_key", key), zap.Error(err))
			}
		}()
	}
}

func syncState(status backfilldomain.Status) domain.SyncState {
	return domain.SyncState{State: string(status.State), Error: status.Error}
}
