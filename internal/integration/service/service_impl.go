package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/metrica/internal/integration/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("integration.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.repo.ListAccounts(ctx, s.db)
}

func (s *Service) GetAccount(ctx context.Context, req domain.GetAccountRequest) (domain.Account, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Account{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindAccountByID(ctx, s.db, id)
	if err != nil {
		return domain.Account{}, err
	}
	if item == nil {
		return domain.Account{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) ListProducts(ctx context.Context, accountIDs []string) ([]domain.Product, error) {
	ids := make([]snowflake.ID, 0, len(accountIDs))
	for _, raw := range accountIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		ids = append(ids, id)
	}
	return s.repo.ListProducts(ctx, s.db, ids)
}
