package token

import "errors"

var (
	// ErrTokenGeneration indicates token generation failed
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrInvalidToken is returned for every validation failure: bad signature,
	// unknown kid, expired, wrong issuer or audience, missing claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidKey indicates stored key material could not be parsed
	ErrInvalidKey = errors.New("invalid signing key")
)
