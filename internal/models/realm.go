package models

import "time"

// Realm is a tenant boundary. Every user, client, key and token belongs to exactly one realm.
type Realm struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

func (Realm) TableName() string {
	return "realms"
}
