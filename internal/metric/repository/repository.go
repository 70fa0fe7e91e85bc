package repository

import (
	"context"

	"github.com/smallbiznis/metrica/internal/metric/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func windowScope(db *gorm.DB, q domain.WindowQuery) *gorm.DB {
	stmt := db.Where("date >= ? AND date <= ?", q.From, q.To)
	if len(q.AccountIDs) > 0 {
		stmt = stmt.Where("account_id IN ?", q.AccountIDs)
	}
	return stmt
}

func (r *repo) ListRows(ctx context.Context, db *gorm.DB, q domain.WindowQuery) ([]domain.MetricRow, error) {
	var rows []domain.MetricRow
	stmt := windowScope(db.WithContext(ctx).Model(&domain.MetricRow{}), q)
	if err := stmt.Order("date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) AggregateTotals(ctx context.Context, db *gorm.DB, q domain.WindowQuery) ([]domain.AggregatedTotal, error) {
	stockKeys := []domain.Type{
		domain.TypeMRR,
		domain.TypeActiveSubscriptions,
		domain.TypeActiveTrials,
		domain.TypeActiveUsers,
		domain.TypeProductsCount,
	}

	var flow []domain.AggregatedTotal
	stmt := windowScope(db.WithContext(ctx).Model(&domain.MetricRow{}), q).
		Select("metric_type, SUM(value) AS total, COALESCE(MAX(currency), '') AS currency, COUNT(*) AS count").
		Where("metric_type NOT IN ?", stockKeys).
		Group("metric_type")
	if err := stmt.Scan(&flow).Error; err != nil {
		return nil, err
	}

	// Stock metrics are folded in Go: latest snapshot per source, then summed.
	// The equivalent SQL needs a correlated max-date join that does not read
	// the same on every dialect we support.
	var stockRows []domain.MetricRow
	stmt = windowScope(db.WithContext(ctx).Model(&domain.MetricRow{}), q).
		Where("metric_type IN ?", stockKeys).
		Order("date ASC, id ASC")
	if err := stmt.Find(&stockRows).Error; err != nil {
		return nil, err
	}

	return append(flow, foldStock(stockRows)...), nil
}

// foldStock reduces stock rows to one AggregatedTotal per type: per source the
// latest date wins, sources are then summed. Count is the raw row count so
// callers can judge snapshot coverage.
func foldStock(rows []domain.MetricRow) []domain.AggregatedTotal {
	type agg struct {
		value float64
		date  string
	}
	latest := make(map[domain.Type]map[string]agg)
	counts := make(map[domain.Type]int64)
	currencies := make(map[domain.Type]string)
	var order []domain.Type

	for _, row := range rows {
		if _, ok := latest[row.Type]; !ok {
			latest[row.Type] = make(map[string]agg)
			order = append(order, row.Type)
		}
		counts[row.Type]++
		if currencies[row.Type] == "" {
			currencies[row.Type] = row.Currency
		}

		key := row.Source().String()
		if prev, ok := latest[row.Type][key]; !ok || row.Day() >= prev.date {
			latest[row.Type][key] = agg{value: row.Value, date: row.Day()}
		}
	}

	totals := make([]domain.AggregatedTotal, 0, len(order))
	for _, t := range order {
		var sum float64
		for _, a := range latest[t] {
			sum += a.value
		}
		totals = append(totals, domain.AggregatedTotal{
			Type:     t,
			Total:    sum,
			Currency: currencies[t],
			Count:    counts[t],
		})
	}
	return totals
}

func (r *repo) CountByType(ctx context.Context, db *gorm.DB, q domain.WindowQuery) (map[domain.Type]int64, error) {
	var results []struct {
		MetricType domain.Type
		Count      int64
	}
	stmt := windowScope(db.WithContext(ctx).Model(&domain.MetricRow{}), q).
		Select("metric_type, COUNT(*) AS count").
		Group("metric_type")
	if err := stmt.Scan(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.Type]int64, len(results))
	for _, item := range results {
		counts[item.MetricType] = item.Count
	}
	return counts, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rows []domain.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, 500).Error
}
