package models

import "time"

// AuthorizationCode stores OAuth 2.0 authorization codes (RFC 6749).
// Only the SHA-256 hash of the code is kept; codes are short-lived and single-use.
type AuthorizationCode struct {
	ID       string `gorm:"primaryKey;size:36"`
	RealmID  string `gorm:"not null;index"`
	ClientID string `gorm:"not null;index"` // Client.ClientID, not Client.ID
	UserID   string `gorm:"not null;index"`

	CodeHash string `gorm:"uniqueIndex;not null"` // SHA256(plainCode)

	RedirectURI string `gorm:"not null"`
	Scopes      string `gorm:"not null"`

	// PKCE (RFC 7636), S256 only
	CodeChallenge string `gorm:"not null"`

	// OIDC nonce, echoed into the ID token
	Nonce string `gorm:"default:''"`

	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (a *AuthorizationCode) IsExpired() bool {
	return !time.Now().Before(a.ExpiresAt)
}

func (AuthorizationCode) TableName() string {
	return "authorization_codes"
}
