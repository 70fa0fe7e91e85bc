package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/metrica/internal/projectgroup/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, group *domain.ProjectGroup) error {
	return db.WithContext(ctx).Create(group).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ProjectGroup, error) {
	var g domain.ProjectGroup
	err := db.WithContext(ctx).
		Model(&domain.ProjectGroup{}).
		Where("id = ?", id).
		Take(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.ProjectGroup, error) {
	var items []domain.ProjectGroup
	err := db.WithContext(ctx).
		Model(&domain.ProjectGroup{}).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, group *domain.ProjectGroup) error {
	if group == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE project_groups SET name = ?, slug = ?, members = ?, updated_at = ? WHERE id = ?`,
		group.Name,
		group.Slug,
		group.Members,
		group.UpdatedAt,
		group.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.ProjectGroup{}).Error
}
