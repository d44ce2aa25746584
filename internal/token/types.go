package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type constants
const (
	TokenTypeBearer = "Bearer"
)

// IDTokenParams holds the data needed to build an OIDC ID Token (OIDC Core 1.0 §2).
type IDTokenParams struct {
	Issuer            string
	Subject           string // user ID
	Audience          string // client_id
	Nonce             string // omitted when empty
	PreferredUsername string
	Email             string
	Expiry            time.Duration
}

// AccessTokenParams holds the data needed to build an access token.
// The audience of an access token is always its issuer.
type AccessTokenParams struct {
	Issuer   string
	Subject  string
	ClientID string
	Scope    string
	Expiry   time.Duration
}

// Result is a signed token and the claims it carries.
type Result struct {
	TokenString string
	TokenType   string
	ExpiresAt   time.Time
	Claims      jwt.MapClaims
}

// Claims is the validated content of an access token.
type Claims struct {
	Subject  string
	ClientID string
	Scope    string
	Issuer   string
	Raw      jwt.MapClaims
}
