package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"accountsvc/internal/domain"
	"accountsvc/internal/repository"
	"accountsvc/pkg/config"
	"accountsvc/pkg/crypto"
	jwtpkg "accountsvc/pkg/jwt"
)

// ErrEmailTaken is returned when registering with an active account's email.
var ErrEmailTaken = errors.New("auth: email already registered")

// ErrInvalidCredentials covers unknown email, wrong password and inactive
// accounts alike. Callers must not distinguish the cases.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrInvalidToken covers every token failure: bad signature, expiry,
// unknown or inactive subject, and refresh-slot mismatch.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Service handles registration, login and the session-token state machine.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Register creates a user with a hashed password and opens a session.
// Duplicate active emails are rejected before any write; the partial unique
// index catches the insert race and maps to the same error.
func (s Service) Register(ctx context.Context, name, email, password string) (*domain.User, TokenPair, error) {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, TokenPair{}, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, tokens, nil
}

// Login authenticates a user and opens a fresh session, displacing any
// previous refresh token for the account.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if !user.IsActive {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, tokens, nil
}

// Refresh rotates the session. The presented token must verify against the
// refresh secret AND match the single stored slot byte-for-byte, so a token
// superseded by rotation fails even while its signature is still valid.
//
// Two concurrent refreshes for one account can interleave the slot
// read/write; the loser's token simply dies on next use. Accepted at this
// scale, the store's per-row atomicity is the only guard.
func (s Service) Refresh(ctx context.Context, presented string) (*domain.User, TokenPair, error) {
	claims, err := jwtpkg.Parse(presented, s.cfg.RefreshSecret)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidToken
		}
		return nil, TokenPair{}, err
	}
	if !user.IsActive || user.RefreshToken != presented {
		s.logger.Warn("refresh token rejected", "user_id", user.ID)
		return nil, TokenPair{}, ErrInvalidToken
	}

	tokens, err := s.openSession(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, tokens, nil
}

// Logout clears the stored refresh token. Idempotent: logging out an
// already-closed session is not an error. Outstanding access tokens remain
// valid until their own expiry.
func (s Service) Logout(ctx context.Context, userID string) error {
	err := s.users.StoreRefreshToken(ctx, userID, "")
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

// Authorize validates a bearer access token and resolves its subject. Every
// failure collapses into ErrInvalidToken so the HTTP layer cannot leak
// which check rejected the request.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, *jwtpkg.Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, nil, ErrInvalidToken
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.AccessSecret)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrInvalidToken
	}
	return user, claims, nil
}

// openSession mints a token pair and stores the refresh token as the
// account's single valid slot.
func (s Service) openSession(ctx context.Context, user *domain.User) (TokenPair, error) {
	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.StoreRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return TokenPair{}, err
	}
	user.RefreshToken = tokens.RefreshToken
	return tokens, nil
}

// issueTokens is a pure function of (identity, secrets, clock): one access
// token and one refresh token, independently signed.
func (s Service) issueTokens(userID string) (TokenPair, error) {
	access, err := jwtpkg.GenerateToken(userID, s.cfg.AccessSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := jwtpkg.GenerateToken(userID, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.cfg.AccessTokenTTL}, nil
}
