package store

import (
	"context"

	"github.com/go-authgate/realmgate/internal/models"

	"gorm.io/gorm"
)

func (s *Store) CreateAuthorizationCode(ctx context.Context, code *models.AuthorizationCode) error {
	return translate(s.db.WithContext(ctx).Create(code).Error)
}

// ConsumeAuthorizationCode finds the unused, unexpired code with codeHash in
// the realm and marks it used in the same transaction. The conditional update
// guarantees that of any number of concurrent callers exactly one receives
// the record; all others get ErrNotFound, as do callers presenting an
// unknown, used or expired code.
//
// The transaction runs detached from ctx cancellation so a client disconnect
// cannot abort it halfway.
func (s *Store) ConsumeAuthorizationCode(
	ctx context.Context,
	realmID, codeHash string,
) (*models.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code models.AuthorizationCode
	err := s.db.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("realm_id = ? AND code_hash = ? AND used = ?", realmID, codeHash, false).
			First(&code).Error; err != nil {
			return err
		}
		if code.IsExpired() {
			return ErrNotFound
		}

		result := tx.Model(&models.AuthorizationCode{}).
			Where("id = ? AND used = ?", code.ID, false).
			Update("used", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return ErrNotFound
		}
		code.Used = true
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &code, nil
}
