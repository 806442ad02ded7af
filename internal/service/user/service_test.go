package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"accountsvc/internal/domain"
	"accountsvc/internal/repository"
)

type userRepoMock struct {
	getByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	listFunc       func(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	updateFunc     func(ctx context.Context, user *domain.User) error
	deactivateFunc func(ctx context.Context, id string) error
}

var _ repository.UserRepository = (*userRepoMock)(nil)

func (m *userRepoMock) CreateUser(context.Context, *domain.User) error { return nil }

func (m *userRepoMock) GetUserByEmail(context.Context, string) (*domain.User, error) {
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

func (m *userRepoMock) StoreRefreshToken(context.Context, string, string) error { return nil }

func (m *userRepoMock) DeactivateUser(ctx context.Context, id string) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id)
	}
	return nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListAppliesDefaults(t *testing.T) {
	repo := &userRepoMock{
		listFunc: func(_ context.Context, limit, offset int) ([]domain.User, int, error) {
			if limit != 10 || offset != 0 {
				t.Fatalf("unexpected window: limit=%d offset=%d", limit, offset)
			}
			return nil, 0, nil
		},
	}
	svc := New(repo, newLogger())

	_, pagination, err := svc.List(context.Background(), 0, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pagination.Page != 1 || pagination.Limit != 10 {
		t.Fatalf("unexpected pagination defaults: %+v", pagination)
	}
}

func TestListPaginationMath(t *testing.T) {
	repo := &userRepoMock{
		listFunc: func(_ context.Context, limit, offset int) ([]domain.User, int, error) {
			if limit != 5 || offset != 5 {
				t.Fatalf("unexpected window: limit=%d offset=%d", limit, offset)
			}
			return make([]domain.User, 5), 12, nil
		},
	}
	svc := New(repo, newLogger())

	users, pagination, err := svc.List(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 5 {
		t.Fatalf("expected 5 users, got %d", len(users))
	}
	if pagination.Total != 12 || pagination.Pages != 3 {
		t.Fatalf("unexpected pagination: %+v", pagination)
	}
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	existing := &domain.User{
		ID:        "u1",
		Name:      "Ada",
		Email:     "ada@example.com",
		UpdatedAt: time.Now().UTC().Add(-time.Hour),
	}
	var saved *domain.User
	repo := &userRepoMock{
		getByIDFunc: func(_ context.Context, _ string) (*domain.User, error) {
			return existing, nil
		},
		updateFunc: func(_ context.Context, user *domain.User) error {
			saved = user
			return nil
		},
	}
	svc := New(repo, newLogger())

	name := "Ada Lovelace"
	updated, err := svc.Update(context.Background(), "u1", UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatalf("expected update to be persisted")
	}
	if updated.Name != "Ada Lovelace" {
		t.Fatalf("name not applied: %q", updated.Name)
	}
	if updated.Email != "ada@example.com" {
		t.Fatalf("email must stay untouched, got %q", updated.Email)
	}
	if !updated.UpdatedAt.After(time.Now().UTC().Add(-time.Minute)) {
		t.Fatalf("updated_at not bumped: %v", updated.UpdatedAt)
	}
}

func TestUpdateSurfacesDuplicateEmail(t *testing.T) {
	repo := &userRepoMock{
		getByIDFunc: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: "u1"}, nil
		},
		updateFunc: func(_ context.Context, _ *domain.User) error {
			return repository.ErrDuplicateEmail
		},
	}
	svc := New(repo, newLogger())

	email := "taken@example.com"
	if _, err := svc.Update(context.Background(), "u1", UpdateInput{Email: &email}); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSoftDeleteUnknownUser(t *testing.T) {
	repo := &userRepoMock{
		deactivateFunc: func(_ context.Context, _ string) error {
			return repository.ErrNotFound
		},
	}
	svc := New(repo, newLogger())

	if err := svc.SoftDelete(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
