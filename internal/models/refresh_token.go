package models

import "time"

// RefreshToken is a rotating refresh credential. It is revoked the first time it is redeemed.
type RefreshToken struct {
	ID        string `gorm:"primaryKey;size:36"`
	RealmID   string `gorm:"not null;index"`
	ClientID  string `gorm:"not null;index"`
	UserID    string `gorm:"not null;index"`
	TokenHash string `gorm:"uniqueIndex;not null"` // SHA256(plainToken)
	Scopes    string `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (r *RefreshToken) IsExpired() bool {
	return !time.Now().Before(r.ExpiresAt)
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
