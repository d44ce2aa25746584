package store

import (
	"context"

	"github.com/go-authgate/realmgate/internal/models"

	"gorm.io/gorm"
)

func (s *Store) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return translate(s.db.WithContext(ctx).Create(token).Error)
}

// ConsumeRefreshToken finds the unrevoked, unexpired token with tokenHash in
// the realm and revokes it in the same transaction. It follows the same
// at-most-once contract as ConsumeAuthorizationCode.
func (s *Store) ConsumeRefreshToken(
	ctx context.Context,
	realmID, tokenHash string,
) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var token models.RefreshToken
	err := s.db.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("realm_id = ? AND token_hash = ? AND revoked = ?", realmID, tokenHash, false).
			First(&token).Error; err != nil {
			return err
		}
		if token.IsExpired() {
			return ErrNotFound
		}

		result := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", token.ID, false).
			Update("revoked", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return ErrNotFound
		}
		token.Revoked = true
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}
