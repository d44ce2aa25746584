package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-authgate/realmgate/internal/models"

	"gorm.io/gorm"
)

// CreateUser persists a user. Returns ErrConflict if the username is taken in the realm.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) GetUserByID(ctx context.Context, realmID, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("realm_id = ? AND id = ?", realmID, id).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, realmID, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("realm_id = ? AND username = ?", realmID, username).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, realmID string) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Where("realm_id = ?", realmID).Order("username").Find(&users).Error
	return users, err
}

// UpdateUserPasswordHash replaces a user's password hash.
func (s *Store) UpdateUserPasswordHash(ctx context.Context, realmID, userID, hash string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("realm_id = ? AND id = ?", realmID, userID).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user together with their sessions, codes and refresh tokens.
func (s *Store) DeleteUser(ctx context.Context, realmID, username string) error {
	user, err := s.GetUserByUsername(ctx, realmID, username)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.Session{},
			&models.RefreshToken{},
			&models.AuthorizationCode{},
		} {
			if err := tx.Where("realm_id = ? AND user_id = ?", realmID, user.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}
		return tx.Delete(user).Error
	})
}
