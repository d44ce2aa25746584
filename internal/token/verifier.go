package token

import (
	"crypto/ed25519"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// PublicKey is a published verification key.
type PublicKey struct {
	Kid string
	PEM string
}

// Verifier validates tokens issued for one issuer against a set of active keys.
type Verifier struct {
	issuer string
	keys   map[string]ed25519.PublicKey
}

// NewVerifier parses every key. An unparseable key is a configuration fault.
func NewVerifier(issuer string, keys []PublicKey) (*Verifier, error) {
	v := &Verifier{issuer: issuer, keys: make(map[string]ed25519.PublicKey, len(keys))}
	for _, k := range keys {
		pub, err := ParsePublicKey(k.PEM)
		if err != nil {
			return nil, err
		}
		v.keys[k.Kid] = pub
	}
	return v, nil
}

// Validate verifies signature, issuer, audience and expiry, and requires the
// exp, iss and sub claims. Every failure is reported as ErrInvalidToken.
func (v *Verifier) Validate(raw, audience string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(raw, claims, v.keyFunc, opts...)
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	clientID, _ := claims["client_id"].(string)
	scope, _ := claims["scope"].(string)

	return &Claims{
		Subject:  sub,
		ClientID: clientID,
		Scope:    scope,
		Issuer:   v.issuer,
		Raw:      claims,
	}, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	key, ok := v.keys[kid]
	if !ok {
		return nil, errors.New("unknown kid")
	}
	return key, nil
}

// ValidateAccessToken validates raw as an access token, whose audience is the issuer.
// ID tokens (audience = client_id) are rejected.
func (v *Verifier) ValidateAccessToken(raw string) (*Claims, error) {
	return v.Validate(raw, v.issuer)
}
