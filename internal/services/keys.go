package services

import (
	"context"
	"fmt"

	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/store"
	"github.com/go-authgate/realmgate/internal/token"

	"github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"
)

// KeyService selects and publishes per-realm signing keys.
type KeyService struct {
	store *store.Store
}

func NewKeyService(s *store.Store) *KeyService {
	return &KeyService{store: s}
}

// newSigningKey generates a fresh active key model for realmID.
func newSigningKey(realmID string) (*models.SigningKey, error) {
	kp, err := token.GenerateEd25519Keypair()
	if err != nil {
		return nil, err
	}
	return &models.SigningKey{
		ID:            uuid.New().String(),
		RealmID:       realmID,
		PrivateKeyPEM: kp.PrivateKeyPEM,
		PublicKeyPEM:  kp.PublicKeyPEM,
		Kid:           kp.Kid,
		Active:        true,
	}, nil
}

// ActiveSigningKey returns the most recently created active key.
func (s *KeyService) ActiveSigningKey(ctx context.Context, realmID string) (*models.SigningKey, error) {
	keys, err := s.ActiveKeys(ctx, realmID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNoSigningKey
	}
	return &keys[0], nil
}

// ActiveKeys returns every active key, newest first.
func (s *KeyService) ActiveKeys(ctx context.Context, realmID string) ([]models.SigningKey, error) {
	keys, err := s.store.GetActiveSigningKeys(ctx, realmID)
	if err != nil {
		return nil, fmt.Errorf("load signing keys: %w", err)
	}
	return keys, nil
}

// Signer returns a token signer bound to the realm's active key.
func (s *KeyService) Signer(ctx context.Context, realmID string) (*token.Signer, error) {
	key, err := s.ActiveSigningKey(ctx, realmID)
	if err != nil {
		return nil, err
	}
	return token.NewSigner(key.Kid, key.PrivateKeyPEM)
}

// Verifier returns a verifier that accepts tokens signed by any active key.
func (s *KeyService) Verifier(ctx context.Context, realmID, issuer string) (*token.Verifier, error) {
	keys, err := s.ActiveKeys(ctx, realmID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNoSigningKey
	}
	return token.NewVerifier(issuer, publicKeys(keys))
}

// JWKS returns the realm's published key set.
func (s *KeyService) JWKS(ctx context.Context, realmID string) (*jose.JSONWebKeySet, error) {
	keys, err := s.ActiveKeys(ctx, realmID)
	if err != nil {
		return nil, err
	}
	return token.JWKS(publicKeys(keys))
}

// RotateKey adds a new active key that becomes the signing key. Older keys
// remain active and published so outstanding tokens keep validating.
func (s *KeyService) RotateKey(ctx context.Context, realmID string) (*models.SigningKey, error) {
	key, err := newSigningKey(realmID)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateSigningKey(ctx, key); err != nil {
		return nil, fmt.Errorf("store signing key: %w", err)
	}
	return key, nil
}

func publicKeys(keys []models.SigningKey) []token.PublicKey {
	out := make([]token.PublicKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, token.PublicKey{Kid: k.Kid, PEM: k.PublicKeyPEM})
	}
	return out
}
