package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListAccounts(ctx context.Context, db *gorm.DB) ([]Account, error)
	FindAccountByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Account, error)
	ListProducts(ctx context.Context, db *gorm.DB, accountIDs []snowflake.ID) ([]Product, error)
}
