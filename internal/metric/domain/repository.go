package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// WindowQuery selects rows by calendar window and account set.
type WindowQuery struct {
	From       time.Time
	To         time.Time
	AccountIDs []snowflake.ID
}

type Repository interface {
	// ListRows returns every row in the window, account-level and
	// product-level alike, ordered by date ascending.
	ListRows(ctx context.Context, db *gorm.DB, q WindowQuery) ([]MetricRow, error)
	// AggregateTotals folds the window into one row per (type, currency):
	// sums for flow metrics, latest-snapshot-per-source sums for stock
	// metrics. Count carries the number of underlying rows.
	AggregateTotals(ctx context.Context, db *gorm.DB, q WindowQuery) ([]AggregatedTotal, error)
	// CountByType returns raw row counts per metric type for the window.
	CountByType(ctx context.Context, db *gorm.DB, q WindowQuery) (map[Type]int64, error)
	Insert(ctx context.Context, db *gorm.DB, rows []MetricRow) error
}
