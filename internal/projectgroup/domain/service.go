package domain

import (
	"context"
	"errors"
)

type CreateRequest struct {
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

type UpdateRequest struct {
	ID      string   `json:"-"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*ProjectGroup, error)
	List(ctx context.Context) ([]ProjectGroup, error)
	Get(ctx context.Context, id string) (*ProjectGroup, error)
	Update(ctx context.Context, req UpdateRequest) (*ProjectGroup, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidMembers = errors.New("invalid_members")
	ErrNotFound       = errors.New("not_found")
	ErrDuplicateSlug  = errors.New("duplicate_slug")
)
