package util

import (
	"crypto/sha256"
	"encoding/base64"
)

// PKCEMethodS256 is the only code_challenge_method accepted.
const PKCEMethodS256 = "S256"

// PKCEChallengeS256 derives the S256 code_challenge for a code_verifier (RFC 7636 §4.2).
func PKCEChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyPKCES256 checks that BASE64URL(SHA256(verifier)) equals challenge.
func VerifyPKCES256(verifier, challenge string) bool {
	if verifier == "" || challenge == "" {
		return false
	}
	return ConstantTimeEqual(PKCEChallengeS256(verifier), challenge)
}
