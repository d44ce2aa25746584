package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService manages relying parties registered in a realm.
type ClientService struct {
	store *store.Store
}

func NewClientService(s *store.Store) *ClientService {
	return &ClientService{store: s}
}

// Create registers a public client. An empty scope list grants the default scopes.
func (s *ClientService) Create(
	ctx context.Context,
	realmID, clientID string,
	redirectURIs, scopes []string,
) (*models.Client, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client_id must not be empty", ErrInvalidName)
	}
	if len(redirectURIs) == 0 {
		return nil, ErrRedirectURIMissing
	}
	for _, raw := range redirectURIs {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Fragment != "" {
			return nil, fmt.Errorf("invalid redirect_uri %q: must be absolute without fragment", raw)
		}
	}

	allowed := models.StringArray(scopes)
	if len(allowed) == 0 {
		allowed = models.DefaultAllowedScopes
	}

	client := &models.Client{
		ID:            uuid.New().String(),
		RealmID:       realmID,
		ClientID:      clientID,
		RedirectURIs:  models.StringArray(redirectURIs),
		AllowedScopes: allowed,
	}
	if err := s.store.CreateClient(ctx, client); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrClientExists
		}
		return nil, fmt.Errorf("create client: %w", err)
	}

	zap.L().Info("client created", zap.String("realm_id", realmID), zap.String("client_id", clientID))
	return client, nil
}

func (s *ClientService) List(ctx context.Context, realmID string) ([]models.Client, error) {
	return s.store.ListClients(ctx, realmID)
}

func (s *ClientService) Delete(ctx context.Context, realmID, clientID string) error {
	err := s.store.DeleteClient(ctx, realmID, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrClientNotFound
	}
	return err
}
