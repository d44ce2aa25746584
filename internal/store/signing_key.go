package store

import (
	"context"

	"github.com/go-authgate/realmgate/internal/models"
)

// CreateSigningKey adds a key to an existing realm.
func (s *Store) CreateSigningKey(ctx context.Context, key *models.SigningKey) error {
	return translate(s.db.WithContext(ctx).Create(key).Error)
}

// GetActiveSigningKeys returns the realm's active keys, newest first.
func (s *Store) GetActiveSigningKeys(ctx context.Context, realmID string) ([]models.SigningKey, error) {
	var keys []models.SigningKey
	err := s.db.WithContext(ctx).
		Where("realm_id = ? AND active = ?", realmID, true).
		Order("created_at DESC").
		Find(&keys).Error
	return keys, err
}
