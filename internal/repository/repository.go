package repository

import (
	"context"

	"accountsvc/internal/domain"
)

// UserRepository persists account records.
//
// GetUserByEmail only considers active accounts: soft-deleted users are
// nonexistent for every authenticated operation, and the email uniqueness
// constraint is likewise scoped to active rows.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListActiveUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	StoreRefreshToken(ctx context.Context, id, token string) error
	DeactivateUser(ctx context.Context, id string) error
}
