package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// realmNamePattern keeps realm names safe for URL paths and cookie names.
var realmNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,62}$`)

// RealmService manages tenants.
type RealmService struct {
	store *store.Store
}

func NewRealmService(s *store.Store) *RealmService {
	return &RealmService{store: s}
}

// Resolve looks up a realm by name.
func (s *RealmService) Resolve(ctx context.Context, name string) (*models.Realm, error) {
	realm, err := s.store.GetRealmByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRealmNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load realm: %w", err)
	}
	return realm, nil
}

// Create registers a realm and generates its first signing key.
func (s *RealmService) Create(ctx context.Context, name string) (*models.Realm, *models.SigningKey, error) {
	if !realmNamePattern.MatchString(name) {
		return nil, nil, fmt.Errorf("%w: realm names use letters, digits, '-' and '_'", ErrInvalidName)
	}

	realm := &models.Realm{ID: uuid.New().String(), Name: name}
	key, err := newSigningKey(realm.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.CreateRealm(ctx, realm, key); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, ErrRealmExists
		}
		return nil, nil, fmt.Errorf("create realm: %w", err)
	}

	zap.L().Info("realm created", zap.String("realm", name), zap.String("kid", key.Kid))
	return realm, key, nil
}

func (s *RealmService) List(ctx context.Context) ([]models.Realm, error) {
	return s.store.ListRealms(ctx)
}

// Delete removes a realm and everything it owns.
func (s *RealmService) Delete(ctx context.Context, name string) error {
	err := s.store.DeleteRealm(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRealmNotFound
	}
	if err != nil {
		return fmt.Errorf("delete realm: %w", err)
	}
	zap.L().Info("realm deleted", zap.String("realm", name))
	return nil
}
