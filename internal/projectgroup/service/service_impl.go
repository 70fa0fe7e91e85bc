package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/metrica/internal/clock"
	"github.com/smallbiznis/metrica/internal/projectgroup/domain"
	"github.com/smallbiznis/metrica/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("projectgroup.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.ProjectGroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	members, err := normalizeMembers(req.Members)
	if err != nil {
		return nil, err
	}

	raw, err := domain.MarshalMembers(members)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	group := &domain.ProjectGroup{
		ID:        s.genID.Generate(),
		Slug:      slug.Make(name),
		Name:      name,
		Members:   raw,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, s.db, group); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}
	return group, nil
}

func (s *Service) List(ctx context.Context) ([]domain.ProjectGroup, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ProjectGroup, error) {
	groupID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	group, err := s.repo.FindByID(ctx, s.db, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrNotFound
	}
	return group, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.ProjectGroup, error) {
	group, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		group.Name = name
		group.Slug = slug.Make(name)
	}
	if req.Members != nil {
		members, err := normalizeMembers(req.Members)
		if err != nil {
			return nil, err
		}
		raw, err := domain.MarshalMembers(members)
		if err != nil {
			return nil, err
		}
		group.Members = raw
	}
	group.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, group); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}
	return group, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	group, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, group.ID)
}

func normalizeMembers(members []domain.Member) ([]domain.Member, error) {
	if len(members) == 0 {
		return nil, domain.ErrInvalidMembers
	}
	out := make([]domain.Member, 0, len(members))
	seen := make(map[string]struct{})
	for _, m := range members {
		accountID := strings.TrimSpace(m.AccountID)
		if accountID == "" {
			return nil, domain.ErrInvalidMembers
		}
		member := domain.Member{
			AccountID: accountID,
			ProjectID: strings.TrimSpace(m.ProjectID),
		}
		key := member.AccountID + "::" + member.ProjectID
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, member)
	}
	return out, nil
}
