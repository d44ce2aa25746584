package models

import "time"

// SigningKey is an Ed25519 keypair owned by a realm. The newest active key
// signs new tokens; every active key is published for verification.
type SigningKey struct {
	ID            string `gorm:"primaryKey;size:36"`
	RealmID       string `gorm:"not null;index"`
	PrivateKeyPEM string `gorm:"type:text;not null"`
	PublicKeyPEM  string `gorm:"type:text;not null"`
	Kid           string `gorm:"uniqueIndex;not null"`
	Active        bool   `gorm:"not null;default:true"`
	CreatedAt     time.Time
}

func (SigningKey) TableName() string {
	return "signing_keys"
}
