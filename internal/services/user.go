package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/store"
	"github.com/go-authgate/realmgate/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService manages realm users and checks their credentials.
type UserService struct {
	store   *store.Store
	metrics metrics.Recorder
}

func NewUserService(s *store.Store, m metrics.Recorder) *UserService {
	return &UserService{store: s, metrics: m}
}

// Create adds a user with an Argon2id password hash.
func (s *UserService) Create(
	ctx context.Context,
	realmID, username, email, password string,
) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", ErrInvalidName)
	}
	if password == "" {
		return nil, ErrPasswordEmpty
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		RealmID:      realmID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	zap.L().Info("user created", zap.String("realm_id", realmID), zap.String("user_id", user.ID))
	return user, nil
}

func (s *UserService) List(ctx context.Context, realmID string) ([]models.User, error) {
	return s.store.ListUsers(ctx, realmID)
}

func (s *UserService) Get(ctx context.Context, realmID, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, realmID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Delete removes a user and every session, code and refresh token they hold.
func (s *UserService) Delete(ctx context.Context, realmID, username string) error {
	err := s.store.DeleteUser(ctx, realmID, username)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// Authenticate checks a username and password. An unknown username still
// costs one Argon2id verification so both failure paths take the same time.
func (s *UserService) Authenticate(
	ctx context.Context,
	realmID, username, password string,
) (*models.User, error) {
	start := time.Now()

	user, err := s.store.GetUserByUsername(ctx, realmID, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		util.DummyVerify()
		s.metrics.RecordLogin(false, time.Since(start))
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !util.VerifyPassword(password, user.PasswordHash) {
		s.metrics.RecordLogin(false, time.Since(start))
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin(true, time.Since(start))
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(
	ctx context.Context,
	realmID, userID, currentPassword, newPassword string,
) error {
	if newPassword == "" {
		return ErrNewPasswordRequired
	}

	user, err := s.Get(ctx, realmID, userID)
	if err != nil {
		return err
	}
	if !util.VerifyPassword(currentPassword, user.PasswordHash) {
		return ErrCurrentPasswordIncorrect
	}

	return s.setPasswordHash(ctx, realmID, user.ID, newPassword)
}

// SetPassword replaces the password without checking the current one.
// Used by the admin CLI.
func (s *UserService) SetPassword(ctx context.Context, realmID, username, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordEmpty
	}

	user, err := s.store.GetUserByUsername(ctx, realmID, username)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	return s.setPasswordHash(ctx, realmID, user.ID, newPassword)
}

func (s *UserService) setPasswordHash(ctx context.Context, realmID, userID, password string) error {
	hash, err := util.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPasswordHash(ctx, realmID, userID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	zap.L().Info("password updated", zap.String("realm_id", realmID), zap.String("user_id", userID))
	return nil
}
