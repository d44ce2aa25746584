package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/store"
	"github.com/go-authgate/realmgate/internal/util"

	"github.com/google/uuid"
)

// SessionService issues and resolves browser login sessions.
type SessionService struct {
	store  *store.Store
	config *config.Config
}

func NewSessionService(s *store.Store, cfg *config.Config) *SessionService {
	return &SessionService{store: s, config: cfg}
}

// Create starts a session for userID. The returned secret is the cookie
// value; only its hash is stored.
func (s *SessionService) Create(
	ctx context.Context,
	realmID, userID string,
) (util.OpaqueSecret, *models.Session, error) {
	secret, err := util.NewOpaqueSecret()
	if err != nil {
		return util.OpaqueSecret{}, nil, err
	}

	session := &models.Session{
		ID:               uuid.New().String(),
		RealmID:          realmID,
		UserID:           userID,
		SessionTokenHash: secret.Hash(),
		ExpiresAt:        time.Now().Add(s.config.SessionLifetime),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return util.OpaqueSecret{}, nil, fmt.Errorf("store session: %w", err)
	}
	return secret, session, nil
}

// Lookup resolves a raw session cookie value to a live session.
// Returns store.ErrNotFound when the session is unknown or expired.
func (s *SessionService) Lookup(ctx context.Context, realmID, rawToken string) (*models.Session, error) {
	if rawToken == "" {
		return nil, store.ErrNotFound
	}
	return s.store.GetSession(ctx, realmID, util.SHA256Hex(rawToken))
}

// Lifetime returns the configured session lifetime (cookie Max-Age).
func (s *SessionService) Lifetime() time.Duration {
	return s.config.SessionLifetime
}
