package models

import "time"

// Session is a browser login session for one realm.
type Session struct {
	ID               string    `gorm:"primaryKey;size:36"`
	RealmID          string    `gorm:"not null;index"`
	UserID           string    `gorm:"not null;index"`
	SessionTokenHash string    `gorm:"uniqueIndex;not null"`
	ExpiresAt        time.Time `gorm:"not null"`
	CreatedAt        time.Time
}

func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

func (Session) TableName() string {
	return "sessions"
}
