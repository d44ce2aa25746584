package models

import (
	"time"
)

type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	RealmID      string `gorm:"not null;uniqueIndex:idx_users_realm_username"`
	Username     string `gorm:"not null;uniqueIndex:idx_users_realm_username"`
	Email        string `gorm:"not null"`
	PasswordHash string `gorm:"not null"` // Argon2id PHC string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
