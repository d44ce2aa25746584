package store

import (
	"context"
	"fmt"

	"github.com/go-authgate/realmgate/internal/models"

	"gorm.io/gorm"
)

// CreateRealm persists a realm together with its first signing key.
func (s *Store) CreateRealm(ctx context.Context, realm *models.Realm, key *models.SigningKey) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(realm).Error; err != nil {
			return err
		}
		key.RealmID = realm.ID
		return tx.Create(key).Error
	}))
}

// GetRealmByName looks up a realm by its unique name.
func (s *Store) GetRealmByName(ctx context.Context, name string) (*models.Realm, error) {
	var realm models.Realm
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&realm).Error; err != nil {
		return nil, translate(err)
	}
	return &realm, nil
}

// ListRealms returns all realms ordered by name.
func (s *Store) ListRealms(ctx context.Context) ([]models.Realm, error) {
	var realms []models.Realm
	err := s.db.WithContext(ctx).Order("name").Find(&realms).Error
	return realms, err
}

// DeleteRealm removes a realm and every record it owns in one transaction.
func (s *Store) DeleteRealm(ctx context.Context, name string) error {
	realm, err := s.GetRealmByName(ctx, name)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.Session{},
			&models.RefreshToken{},
			&models.AuthorizationCode{},
			&models.User{},
			&models.Client{},
			&models.SigningKey{},
		} {
			if err := tx.Where("realm_id = ?", realm.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}
		return tx.Delete(realm).Error
	})
}
