package util

import "fmt"

// secretBytes is the entropy of every opaque bearer secret
// (authorization codes, refresh tokens, session tokens).
const secretBytes = 32

// OpaqueSecret is a bearer secret that is shown to its holder exactly once.
// Only Hash is ever persisted. String and GoString redact the raw value so
// it cannot leak through fmt or structured logging.
type OpaqueSecret struct {
	raw  string
	hash string
}

// NewOpaqueSecret generates a fresh 256-bit secret.
func NewOpaqueSecret() (OpaqueSecret, error) {
	raw, err := RandomURLToken(secretBytes)
	if err != nil {
		return OpaqueSecret{}, fmt.Errorf("generate secret: %w", err)
	}
	return OpaqueSecret{raw: raw, hash: SHA256Hex(raw)}, nil
}

// Reveal returns the raw secret for the single response that transmits it.
func (s OpaqueSecret) Reveal() string {
	return s.raw
}

// Hash returns the hex SHA-256 digest used as the storage key.
func (s OpaqueSecret) Hash() string {
	return s.hash
}

// IsZero reports whether the secret was never generated.
func (s OpaqueSecret) IsZero() bool {
	return s.raw == ""
}

func (s OpaqueSecret) String() string {
	return "[redacted]"
}

func (s OpaqueSecret) GoString() string {
	return "util.OpaqueSecret{[redacted]}"
}
