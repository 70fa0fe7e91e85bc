package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	integrationdomain "github.com/smallbiznis/metrica/internal/integration/domain"
	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
	projectgroupdomain "github.com/smallbiznis/metrica/internal/projectgroup/domain"
	"gorm.io/gorm"
)

const demoDays = 30

// EnsureDemoData seeds two connected sources, a shared project group and a
// month of metric rows so a fresh install renders a non-empty dashboard.
// Safe to run on every startup; it only writes what is missing.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stripe, err := ensureAccountTx(ctx, tx, node, "Stripe", "Stripe Main")
		if err != nil {
			return err
		}
		gumroad, err := ensureAccountTx(ctx, tx, node, "Gumroad", "Gumroad Shop")
		if err != nil {
			return err
		}

		stripeProduct, err := ensureProductTx(ctx, tx, node, stripe.ID, "CSS Pro")
		if err != nil {
			return err
		}
		gumroadProduct, err := ensureProductTx(ctx, tx, node, gumroad.ID, "CSS Pro")
		if err != nil {
			return err
		}
		if _, err := ensureProductTx(ctx, tx, node, gumroad.ID, "Other Product"); err != nil {
			return err
		}

		if err := ensureGroupTx(ctx, tx, node, "CSS Pro", []projectgroupdomain.Member{
			{AccountID: stripe.ID.String(), ProjectID: stripeProduct.ID.String()},
			{AccountID: gumroad.ID.String(), ProjectID: gumroadProduct.ID.String()},
		}); err != nil {
			return err
		}

		return ensureMetricRowsTx(ctx, tx, node, stripe, gumroad, stripeProduct, gumroadProduct)
	})
}

func ensureAccountTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, provider, label string) (integrationdomain.Account, error) {
	var account integrationdomain.Account
	err := tx.WithContext(ctx).
		Where("provider = ? AND label = ?", provider, label).
		First(&account).Error
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return account, err
	}
	now := time.Now().UTC()
	account = integrationdomain.Account{
		ID:        node.Generate(),
		Provider:  provider,
		Label:     label,
		Currency:  "USD",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&account).Error; err != nil {
		return account, err
	}
	return account, nil
}

func ensureProductTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, accountID snowflake.ID, label string) (integrationdomain.Product, error) {
	var product integrationdomain.Product
	err := tx.WithContext(ctx).
		Where("account_id = ? AND label = ?", accountID, label).
		First(&product).Error
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return product, err
	}
	product = integrationdomain.Product{
		ID:        node.Generate(),
		AccountID: accountID,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
		return product, err
	}
	return product, nil
}

func ensureGroupTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string, members []projectgroupdomain.Member) error {
	var group projectgroupdomain.ProjectGroup
	err := tx.WithContext(ctx).Where("name = ?", name).First(&group).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	raw, err := projectgroupdomain.MarshalMembers(members)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	group = projectgroupdomain.ProjectGroup{
		ID:        node.Generate(),
		Slug:      "css-pro",
		Name:      name,
		Members:   raw,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&group).Error
}

func ensureMetricRowsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, stripe, gumroad integrationdomain.Account, stripeProduct, gumroadProduct integrationdomain.Product) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&metricdomain.MetricRow{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	rows := make([]metricdomain.MetricRow, 0, demoDays*8)
	for i := demoDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		// Deterministic but uneven values so charts look lived in.
		wave := float64((demoDays-i)%7 + 1)

		rows = append(rows,
			row(node, stripe.ID, &stripeProduct.ID, metricdomain.TypeRevenue, day, 80*wave),
			row(node, stripe.ID, &stripeProduct.ID, metricdomain.TypePlatformFees, day, 4*wave),
			row(node, stripe.ID, nil, metricdomain.TypeNewCustomers, day, wave),
			row(node, stripe.ID, nil, metricdomain.TypeSubscriptionRevenue, day, 60*wave),
			row(node, stripe.ID, nil, metricdomain.TypeMRR, day, 2400+10*float64(demoDays-i)),
			row(node, gumroad.ID, &gumroadProduct.ID, metricdomain.TypeRevenue, day, 30*wave),
			row(node, gumroad.ID, nil, metricdomain.TypeOneTimeRevenue, day, 30*wave),
			row(node, gumroad.ID, nil, metricdomain.TypeSalesCount, day, wave),
		)
	}
	return tx.WithContext(ctx).CreateInBatches(rows, 500).Error
}

func row(node *snowflake.Node, accountID snowflake.ID, projectID *snowflake.ID, t metricdomain.Type, day time.Time, value float64) metricdomain.MetricRow {
	return metricdomain.MetricRow{
		ID:        node.Generate(),
		AccountID: accountID,
		ProjectID: projectID,
		Type:      t,
		Date:      day,
		Value:     value,
		Currency:  "USD",
		CreatedAt: time.Now().UTC(),
	}
}
