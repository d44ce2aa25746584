package token

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer issues EdDSA tokens with a single realm signing key.
type Signer struct {
	kid string
	key ed25519.PrivateKey
	now func() time.Time
}

// NewSigner parses privatePEM and binds it to kid.
func NewSigner(kid, privatePEM string) (*Signer, error) {
	key, err := ParsePrivateKey(privatePEM)
	if err != nil {
		return nil, err
	}
	return &Signer{kid: kid, key: key, now: time.Now}, nil
}

// Kid returns the key identifier written into every token header.
func (s *Signer) Kid() string {
	return s.kid
}

// Sign encodes claims as a compact JWS with the kid header set.
func (s *Signer) Sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid

	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return signed, nil
}

// GenerateIDToken builds and signs an OIDC ID token.
func (s *Signer) GenerateIDToken(p IDTokenParams) (*Result, error) {
	now := s.now()
	expiresAt := now.Add(p.Expiry)

	claims := jwt.MapClaims{
		"iss":                p.Issuer,
		"sub":                p.Subject,
		"aud":                p.Audience,
		"exp":                expiresAt.Unix(),
		"iat":                now.Unix(),
		"preferred_username": p.PreferredUsername,
		"email":              p.Email,
	}
	if p.Nonce != "" {
		claims["nonce"] = p.Nonce
	}

	return s.result(claims, expiresAt)
}

// GenerateAccessToken builds and signs an access token whose audience is the issuer.
func (s *Signer) GenerateAccessToken(p AccessTokenParams) (*Result, error) {
	now := s.now()
	expiresAt := now.Add(p.Expiry)

	claims := jwt.MapClaims{
		"iss":       p.Issuer,
		"sub":       p.Subject,
		"aud":       p.Issuer,
		"exp":       expiresAt.Unix(),
		"iat":       now.Unix(),
		"scope":     p.Scope,
		"client_id": p.ClientID,
	}

	return s.result(claims, expiresAt)
}

func (s *Signer) result(claims jwt.MapClaims, expiresAt time.Time) (*Result, error) {
	signed, err := s.Sign(claims)
	if err != nil {
		return nil, err
	}
	return &Result{
		TokenString: signed,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
		Claims:      claims,
	}, nil
}
