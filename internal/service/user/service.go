package user

import (
	"context"
	"time"

	"log/slog"

	"accountsvc/internal/domain"
	"accountsvc/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Service exposes directory operations over account records.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// Pagination describes a listing window.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// UpdateInput carries a partial profile update; nil fields are untouched.
type UpdateInput struct {
	Name  *string
	Email *string
}

// List returns a page of active users, newest first. Out-of-range page and
// limit values fall back to the defaults.
func (s Service) List(ctx context.Context, page, limit int) ([]domain.User, Pagination, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	users, total, err := s.users.ListActiveUsers(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	pages := (total + limit - 1) / limit
	return users, Pagination{Page: page, Limit: limit, Total: total, Pages: pages}, nil
}

// Get returns a user by identifier.
func (s Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// Update applies a partial name/email change. An email collision with
// another active account surfaces as repository.ErrDuplicateEmail.
func (s Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user updated", "user_id", user.ID)
	return user, nil
}

// SoftDelete marks a user inactive. The record stays in the store; the
// account becomes invisible to every authenticated operation.
func (s Service) SoftDelete(ctx context.Context, id string) error {
	if err := s.users.DeactivateUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deactivated", "user_id", id)
	return nil
}
