package service

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	backfillservice "github.com/smallbiznis/metrica/internal/backfill/service"
	"github.com/smallbiznis/metrica/internal/cache"
	"github.com/smallbiznis/metrica/internal/clock"
	"github.com/smallbiznis/metrica/internal/config"
	integrationdomain "github.com/smallbiznis/metrica/internal/integration/domain"
	integrationrepo "github.com/smallbiznis/metrica/internal/integration/repository"
	integrationservice "github.com/smallbiznis/metrica/internal/integration/service"
	"github.com/smallbiznis/metrica/internal/metric/domain"
	metricrepo "github.com/smallbiznis/metrica/internal/metric/repository"
	projectgroupdomain "github.com/smallbiznis/metrica/internal/projectgroup/domain"
	projectgrouprepo "github.com/smallbiznis/metrica/internal/projectgroup/repository"
	projectgroupservice "github.com/smallbiznis/metrica/internal/projectgroup/service"
	"github.com/smallbiznis/metrica/pkg/db"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type recordingTrigger struct {
	mu    sync.Mutex
	calls []string
}

func (f *recordingTrigger) Backfill(ctx context.Context, accountID string, from time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, accountID)
	return nil
}

func (f *recordingTrigger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixture struct {
	svc     domain.Service
	db      *gorm.DB
	trigger *recordingTrigger
	clock   *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	models := []any{
		&domain.MetricRow{},
		&integrationdomain.Account{},
		&integrationdomain.Product{},
		&projectgroupdomain.ProjectGroup{},
	}
	if err := gdb.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"metric_rows", "integration_accounts", "integration_products", "project_groups"} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	fc := clock.NewFakeClock(time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	holder, err := config.NewDashboardConfigHolder()
	if err != nil {
		t.Fatalf("config holder: %v", err)
	}

	trigger := &recordingTrigger{}
	orchestrator := backfillservice.NewOrchestrator(backfillservice.Params{
		Log:     log,
		Clock:   fc,
		Trigger: trigger,
	})

	integrations := integrationservice.New(integrationservice.Params{
		DB:   gdb,
		Log:  log,
		Repo: integrationrepo.Provide(),
	})
	groups := projectgroupservice.New(projectgroupservice.Params{
		DB:    gdb,
		Log:   log,
		GenID: node,
		Clock: fc,
		Repo:  projectgrouprepo.Provide(),
	})

	svc := New(Params{
		DB:           gdb,
		Log:          log,
		Clock:        fc,
		Holder:       holder,
		Repo:         metricrepo.Provide(),
		Integrations: integrations,
		Groups:       groups,
		Orchestrator: orchestrator,
		Snapshots:    cache.NewSnapshotCache(),
	})

	return &fixture{svc: svc, db: gdb, trigger: trigger, clock: fc}
}

func (f *fixture) seedAccounts(t *testing.T) {
	t.Helper()
	accounts := []integrationdomain.Account{
		{ID: 1, Provider: "Stripe", Label: "Stripe Main", Active: true},
		{ID: 2, Provider: "Gumroad", Label: "Gumroad Shop", Active: true},
	}
	products := []integrationdomain.Product{
		{ID: 11, AccountID: 1, Label: "CSS Pro"},
		{ID: 21, AccountID: 2, Label: "CSS Pro"},
		{ID: 22, AccountID: 2, Label: "Other Product"},
	}
	if err := f.db.Create(&accounts).Error; err != nil {
		t.Fatalf("seed accounts: %v", err)
	}
	if err := f.db.Create(&products).Error; err != nil {
		t.Fatalf("seed products: %v", err)
	}
}

var nextRowID int64 = 5000

func (f *fixture) seedRow(t *testing.T, account, project int64, metricType domain.Type, date string, value float64, pending bool) {
	t.Helper()
	nextRowID++
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	row := domain.MetricRow{
		ID:        snowflake.ID(nextRowID),
		AccountID: snowflake.ID(account),
		Type:      metricType,
		Date:      day,
		Value:     value,
		Currency:  "USD",
		CreatedAt: day,
	}
	if project != 0 {
		pid := snowflake.ID(project)
		row.ProjectID = &pid
	}
	if pending {
		row.Metadata = datatypes.JSON([]byte(`{"pending":true}`))
	}
	if err := f.db.Create(&row).Error; err != nil {
		t.Fatalf("seed row: %v", err)
	}
}

// seedFlowCoverage gives every flow metric at least one row so a render does
// not kick off a backfill.
func (f *fixture) seedFlowCoverage(t *testing.T, date string) {
	t.Helper()
	f.seedRow(t, 1, 0, domain.TypeNewCustomers, date, 3, false)
	f.seedRow(t, 1, 0, domain.TypeSubscriptionRevenue, date, 700, false)
	f.seedRow(t, 1, 0, domain.TypeOneTimeRevenue, date, 300, false)
	f.seedRow(t, 1, 0, domain.TypeSalesCount, date, 9, false)
	f.seedRow(t, 1, 0, domain.TypePlatformFees, date, 50, false)
}

func (f *fixture) createGroup(t *testing.T) {
	t.Helper()
	_, err := f.svc.(*Service).groups.Create(context.Background(), projectgroupdomain.CreateRequest{
		Name: "CSS Pro",
		Members: []projectgroupdomain.Member{
			{AccountID: "1", ProjectID: "11"},
			{AccountID: "2", ProjectID: "21"},
		},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
}

func baseRequest() domain.DashboardRequest {
	return domain.DashboardRequest{
		From:       time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC),
		AccountIDs: []string{"1", "2"},
	}
}

func TestGetDashboardValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := baseRequest()
	req.From, req.To = req.To, req.From
	if _, err := f.svc.GetDashboard(ctx, req); err != domain.ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	req = baseRequest()
	req.AccountIDs = nil
	if _, err := f.svc.GetDashboard(ctx, req); err != domain.ErrInvalidAccounts {
		t.Fatalf("expected ErrInvalidAccounts, got %v", err)
	}

	req = baseRequest()
	req.AccountIDs = []string{"not-numeric"}
	if _, err := f.svc.GetDashboard(ctx, req); err != domain.ErrInvalidAccounts {
		t.Fatalf("expected ErrInvalidAccounts, got %v", err)
	}
}

func TestGetDashboardBlendsAndMergesGroups(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)
	f.createGroup(t)

	f.seedRow(t, 1, 11, domain.TypeRevenue, "2026-02-03", 500, false)
	f.seedRow(t, 2, 21, domain.TypeRevenue, "2026-02-03", 300, false)
	f.seedRow(t, 2, 22, domain.TypeRevenue, "2026-02-03", 200, false)
	f.seedFlowCoverage(t, "2026-02-03")

	snap, err := f.svc.GetDashboard(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	if snap.Totals.Revenue != 1000 {
		t.Fatalf("revenue %v", snap.Totals.Revenue)
	}
	if snap.Totals.NetRevenue != 950 {
		t.Fatalf("net revenue %v", snap.Totals.NetRevenue)
	}

	blended := snap.Blended[domain.TypeRevenue]
	if len(blended) != 2 {
		t.Fatalf("blended entries: %+v", blended)
	}
	if blended[0].Label != "CSS Pro" || blended[0].Value != 800 {
		t.Fatalf("group entry: %+v", blended[0])
	}
	if math.Abs(blended[0].Percentage-80) > 0.01 {
		t.Fatalf("group percentage %v", blended[0].Percentage)
	}
	if blended[1].Label != "Other Product" || blended[1].Value != 200 {
		t.Fatalf("ungrouped entry: %+v", blended[1])
	}
	if len(blended[0].Children) != 2 {
		t.Fatalf("group children: %+v", blended[0].Children)
	}

	series := snap.Series[domain.TypeRevenue]
	if len(series) != 1 || series[0].Value != 1000 {
		t.Fatalf("series: %+v", series)
	}

	if snap.Sync.State != "idle" {
		t.Fatalf("sync state %q", snap.Sync.State)
	}
	if f.trigger.count() != 0 {
		t.Fatal("full coverage must not trigger a backfill")
	}
}

func TestGetDashboardMRRDelta(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)

	f.seedRow(t, 1, 11, domain.TypeMRR, "2026-02-06", 2404.28, false)
	f.seedRow(t, 1, 11, domain.TypeMRR, "2026-02-07", 2145.50, false)
	f.seedRow(t, 1, 0, domain.TypeRevenue, "2026-02-06", 10, false)
	f.seedFlowCoverage(t, "2026-02-06")

	snap, err := f.svc.GetDashboard(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	if len(snap.MRRDelta) != 1 {
		t.Fatalf("mrr delta: %+v", snap.MRRDelta)
	}
	if math.Abs(snap.MRRDelta[0].Delta-(-258.78)) > 0.001 {
		t.Fatalf("delta %v", snap.MRRDelta[0].Delta)
	}
}

func TestGetDashboardPendingFlags(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)

	f.seedRow(t, 1, 0, domain.TypeRevenue, "2026-02-07", 10, true)
	f.seedFlowCoverage(t, "2026-02-06")

	snap, err := f.svc.GetDashboard(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	if !snap.Pending.Today[domain.TypeRevenue] {
		t.Fatalf("pending today: %+v", snap.Pending)
	}
	if !snap.Pending.Range[domain.TypeRevenue] {
		t.Fatalf("pending range: %+v", snap.Pending)
	}
}

func TestGetDashboardTriggersBackfillOnEmptyWindow(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)

	// One stock row only: every flow key has zero rows in the window.
	f.seedRow(t, 1, 0, domain.TypeMRR, "2026-02-03", 100, false)

	if _, err := f.svc.GetDashboard(context.Background(), baseRequest()); err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for f.trigger.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("backfill never reached the connector, calls=%d", f.trigger.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGetDashboardComparison(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)

	// Both windows fully covered for MRR: one snapshot per account per window.
	f.seedRow(t, 1, 0, domain.TypeMRR, "2026-02-03", 100, false)
	f.seedRow(t, 2, 0, domain.TypeMRR, "2026-02-03", 200, false)
	f.seedRow(t, 1, 0, domain.TypeMRR, "2026-01-28", 90, false)
	f.seedRow(t, 2, 0, domain.TypeMRR, "2026-01-28", 180, false)
	f.seedFlowCoverage(t, "2026-02-03")
	f.seedFlowCoverage(t, "2026-01-28")

	req := baseRequest()
	req.Compare = true
	snap, err := f.svc.GetDashboard(context.Background(), req)
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	if !snap.Comparison[domain.TypeRevenue] {
		t.Fatal("flow comparison must be available")
	}
	if !snap.Comparison[domain.TypeMRR] {
		t.Fatal("fully covered stock comparison must be available")
	}
	if snap.Comparison[domain.TypeActiveUsers] {
		t.Fatal("uncovered stock comparison must be hidden")
	}
	if snap.PreviousTotals == nil || snap.PreviousTotals.MRR != 270 {
		t.Fatalf("previous totals: %+v", snap.PreviousTotals)
	}

	req.Compare = false
	snap, err = f.svc.GetDashboard(context.Background(), req)
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	if snap.Comparison[domain.TypeRevenue] {
		t.Fatal("disabled comparison must never be available")
	}
	if snap.PreviousTotals != nil {
		t.Fatal("previous totals must be omitted when compare is off")
	}
}

func TestGetDashboardCachesSnapshots(t *testing.T) {
	f := newFixture(t)
	f.seedAccounts(t)

	f.seedRow(t, 1, 0, domain.TypeRevenue, "2026-02-03", 100, false)
	f.seedFlowCoverage(t, "2026-02-03")

	ctx := context.Background()
	first, err := f.svc.GetDashboard(ctx, baseRequest())
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	// New rows are invisible until the snapshot is invalidated.
	f.seedRow(t, 1, 0, domain.TypeRevenue, "2026-02-04", 900, false)
	cached, err := f.svc.GetDashboard(ctx, baseRequest())
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	if cached.Totals.Revenue != first.Totals.Revenue {
		t.Fatalf("expected cached totals, got %v", cached.Totals.Revenue)
	}

	f.svc.InvalidateWindow([]string{"1"})
	fresh, err := f.svc.GetDashboard(ctx, baseRequest())
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	if fresh.Totals.Revenue != first.Totals.Revenue+900 {
		t.Fatalf("expected fresh totals, got %v", fresh.Totals.Revenue)
	}
}
