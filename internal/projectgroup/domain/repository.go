package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, group *ProjectGroup) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ProjectGroup, error)
	List(ctx context.Context, db *gorm.DB) ([]ProjectGroup, error)
	Update(ctx context.Context, db *gorm.DB, group *ProjectGroup) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
