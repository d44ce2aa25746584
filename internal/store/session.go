package store

import (
	"context"

	"github.com/go-authgate/realmgate/internal/models"
)

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	return translate(s.db.WithContext(ctx).Create(session).Error)
}

// GetSession returns the live session with tokenHash in the realm. Expired
// sessions are reported as ErrNotFound.
func (s *Store) GetSession(ctx context.Context, realmID, tokenHash string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("realm_id = ? AND session_token_hash = ?", realmID, tokenHash).
		First(&session).Error
	if err != nil {
		return nil, translate(err)
	}
	if session.IsExpired() {
		return nil, ErrNotFound
	}
	return &session, nil
}
