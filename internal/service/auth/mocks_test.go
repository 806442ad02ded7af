package auth

import (
	"context"
	"io"
	"log/slog"
	"time"

	"accountsvc/internal/domain"
	"accountsvc/internal/repository"
	"accountsvc/pkg/config"
)

type userRepoMock struct {
	createFunc       func(ctx context.Context, user *domain.User) error
	getByEmailFunc   func(ctx context.Context, email string) (*domain.User, error)
	getByIDFunc      func(ctx context.Context, id string) (*domain.User, error)
	listFunc         func(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	updateFunc       func(ctx context.Context, user *domain.User) error
	storeRefreshFunc func(ctx context.Context, id, token string) error
	deactivateFunc   func(ctx context.Context, id string) error
}

var _ repository.UserRepository = (*userRepoMock)(nil)

func (m *userRepoMock) CreateUser(ctx context.Context, user *domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *userRepoMock) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) ListActiveUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *userRepoMock) UpdateUser(ctx context.Context, user *domain.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

func (m *userRepoMock) StoreRefreshToken(ctx context.Context, id, token string) error {
	if m.storeRefreshFunc != nil {
		return m.storeRefreshFunc(ctx, id, token)
	}
	return nil
}

func (m *userRepoMock) DeactivateUser(ctx context.Context, id string) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id)
	}
	return nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() config.APIConfig {
	return config.APIConfig{
		Environment:     "test",
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}
