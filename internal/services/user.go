package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mblog/apiserver/internal/auth"
	"github.com/mblog/apiserver/internal/mail"
	"github.com/mblog/apiserver/internal/mq"
	"github.com/mblog/apiserver/internal/store"
	"github.com/mblog/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SetEmailVerified(ctx context.Context, email string) error
	SetActive(ctx context.Context, id int, active bool) error
	Delete(ctx context.Context, id int) error
}

// UserService encapsulates account use-cases: registration, email
// verification, login, password change, deactivation and removal.
type UserService struct {
	repo   UserRepository
	tokens *auth.TokenService
	mailer *mail.Mailer
	bus    *mq.Bus
	logger *slog.Logger
}

func NewUserService(repo UserRepository, tokens *auth.TokenService, mailer *mail.Mailer, bus *mq.Bus, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		bus:    bus,
		logger: logger,
	}
}

// Register creates a new, unverified account and triggers the
// verification email. The returned bool reports whether the email was
// handed off successfully; delivery failure does not undo the
// registration. A duplicate username or email yields store.ErrConflict.
func (s *UserService) Register(ctx context.Context, username, email, password string) (types.User, bool, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, false, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		IsActive:     true,
	})
	if err != nil {
		return types.User{}, false, err
	}

	emailSent := false
	token, err := s.tokens.IssueVerificationToken(user.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "issue verification token failed", "user_id", user.ID, "error", err)
	} else if err := s.mailer.SendVerificationEmail(ctx, user.Email, token); err != nil {
		s.logger.ErrorContext(ctx, "send verification email failed", "user_id", user.ID, "error", err)
	} else {
		emailSent = true
	}

	publishEvent(ctx, s.bus, s.logger, userEventsChannel, map[string]any{
		"type":     "user.registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return user, emailSent, nil
}

// VerifyEmail decodes the verification token and marks the matching
// account as verified. Bad tokens and unknown emails both yield
// auth.ErrInvalidToken. Verifying an already-verified account succeeds.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	email, err := s.tokens.VerifyVerificationToken(token)
	if err != nil {
		return err
	}

	if err := s.repo.SetEmailVerified(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: unknown email", auth.ErrInvalidToken)
		}
		return err
	}

	publishEvent(ctx, s.bus, s.logger, userEventsChannel, map[string]any{
		"type":  "user.verified",
		"email": email,
	})

	return nil
}

// Login verifies credentials and issues an access token. Unknown users
// and wrong passwords yield ErrInvalidCredentials; deactivated accounts
// ErrUserInactive; unverified emails ErrEmailNotVerified.
func (s *UserService) Login(ctx context.Context, username, password string) (string, types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", types.User{}, ErrInvalidCredentials
		}
		return "", types.User{}, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", types.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", types.User{}, ErrUserInactive
	}
	if !user.IsEmailVerified {
		return "", types.User{}, ErrEmailNotVerified
	}

	token, err := s.tokens.IssueAccessToken(user.Username)
	if err != nil {
		return "", types.User{}, fmt.Errorf("issue access token: %w", err)
	}

	publishEvent(ctx, s.bus, s.logger, userEventsChannel, map[string]any{
		"type":     "user.logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return token, user, nil
}

// ChangePassword replaces the stored hash after verifying the current
// password. A wrong current password yields ErrInvalidCredentials and
// leaves the hash unchanged.
func (s *UserService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hashed
	if _, err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	return nil
}

// Deactivate soft-deletes the account. The record is retained and
// already-issued access tokens keep their signature validity, but
// authentication middleware rejects inactive users on every request.
func (s *UserService) Deactivate(ctx context.Context, id int) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	publishEvent(ctx, s.bus, s.logger, userEventsChannel, map[string]any{
		"type":    "user.deactivated",
		"user_id": id,
	})
	return nil
}

// Delete permanently removes the account.
func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	publishEvent(ctx, s.bus, s.logger, userEventsChannel, map[string]any{
		"type":    "user.deleted",
		"user_id": id,
	})
	return nil
}

// List returns a page of users. Callers are expected to have passed the
// admin check at the boundary.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}
