package token

import (
	"github.com/go-jose/go-jose/v4"
)

// PublicJWK projects a published key into its JWK form
// ({"kty":"OKP","crv":"Ed25519","x":...}).
func PublicJWK(k PublicKey) (jose.JSONWebKey, error) {
	pub, err := ParsePublicKey(k.PEM)
	if err != nil {
		return jose.JSONWebKey{}, err
	}
	return jose.JSONWebKey{
		Key:       pub,
		KeyID:     k.Kid,
		Algorithm: string(jose.EdDSA),
		Use:       "sig",
	}, nil
}

// JWKS builds the key set published at the jwks endpoint.
func JWKS(keys []PublicKey) (*jose.JSONWebKeySet, error) {
	set := &jose.JSONWebKeySet{Keys: make([]jose.JSONWebKey, 0, len(keys))}
	for _, k := range keys {
		jwk, err := PublicJWK(k)
		if err != nil {
			return nil, err
		}
		set.Keys = append(set.Keys, jwk)
	}
	return set, nil
}
