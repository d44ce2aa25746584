package services

import "errors"

// Realm errors
var (
	ErrRealmNotFound = errors.New("realm not found")
	ErrRealmExists   = errors.New("realm already exists")
	ErrInvalidName   = errors.New("invalid name")
)

// Authorization request errors. Messages are returned to clients verbatim.
var (
	ErrUnsupportedResponseType     = errors.New("unsupported response_type")
	ErrCodeChallengeRequired       = errors.New("code_challenge is required (PKCE)")
	ErrCodeChallengeMethodRequired = errors.New("code_challenge_method is required (must be S256)")
	ErrUnsupportedChallengeMethod  = errors.New("only S256 code_challenge_method is supported")
	ErrUnknownClient               = errors.New("unknown client_id")
	ErrRedirectURINotRegistered    = errors.New("redirect_uri not registered")
	ErrInvalidScope                = errors.New("invalid scope")
	ErrStateTooLong                = errors.New("state is too long")
	ErrNonceTooLong                = errors.New("nonce is too long")
)

// ErrInvalidCredentials covers unknown usernames and wrong passwords alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Token endpoint errors. Messages are returned to clients verbatim.
var (
	ErrUnsupportedGrantType   = errors.New("unsupported grant_type")
	ErrCodeRequired           = errors.New("code is required")
	ErrRedirectURIRequired    = errors.New("redirect_uri is required")
	ErrCodeVerifierRequired   = errors.New("code_verifier is required (PKCE)")
	ErrRefreshTokenRequired   = errors.New("refresh_token is required")
	ErrInvalidAuthCode        = errors.New("invalid or expired authorization code")
	ErrPKCEVerificationFailed = errors.New("PKCE verification failed")
	ErrInvalidRefreshToken    = errors.New("invalid or expired refresh token")
)

// Bearer and account errors
var (
	ErrInvalidAccessToken       = errors.New("invalid access token")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrNewPasswordRequired      = errors.New("new_password is required")
	ErrPasswordEmpty            = errors.New("password cannot be empty")
	ErrUserExists               = errors.New("username already exists in realm")
	ErrUserNotFound             = errors.New("user not found")
	ErrClientExists             = errors.New("client_id already exists in realm")
	ErrClientNotFound           = errors.New("client not found")
	ErrRedirectURIMissing       = errors.New("at least one redirect_uri is required")
)

// ErrNoSigningKey means a realm has no active key. It is a configuration
// fault and surfaces as an internal error.
var ErrNoSigningKey = errors.New("no signing key found")
