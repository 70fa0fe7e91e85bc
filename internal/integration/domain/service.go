package domain

import (
	"context"
	"errors"
)

type GetAccountRequest struct {
	ID string
}

type Service interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, req GetAccountRequest) (Account, error)
	ListProducts(ctx context.Context, accountIDs []string) ([]Product, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
