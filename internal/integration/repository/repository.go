package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/metrica/internal/integration/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListAccounts(ctx context.Context, db *gorm.DB) ([]domain.Account, error) {
	var items []domain.Account
	err := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindAccountByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Take(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *repo) ListProducts(ctx context.Context, db *gorm.DB, accountIDs []snowflake.ID) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if len(accountIDs) > 0 {
		stmt = stmt.Where("account_id IN ?", accountIDs)
	}
	if err := stmt.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
