package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"
)

// DefaultAllowedScopes is granted to clients registered without an explicit scope list.
var DefaultAllowedScopes = StringArray{"openid", "profile", "email"}

// Client is a relying party registered in a realm. Clients are public and
// authenticate with PKCE only.
type Client struct {
	ID            string      `gorm:"primaryKey;size:36"`
	RealmID       string      `gorm:"not null;uniqueIndex:idx_clients_realm_client"`
	ClientID      string      `gorm:"not null;uniqueIndex:idx_clients_realm_client"`
	RedirectURIs  StringArray `gorm:"type:json"`
	AllowedScopes StringArray `gorm:"type:json"`
	CreatedAt     time.Time
}

// HasRedirectURI reports whether uri is byte-for-byte one of the registered redirect URIs.
func (c *Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// AllowsScopes reports whether every space-separated scope is allowed for the client.
func (c *Client) AllowsScopes(scope string) bool {
	for _, s := range strings.Fields(scope) {
		if !slices.Contains(c.AllowedScopes, s) {
			return false
		}
	}
	return true
}

func (Client) TableName() string {
	return "clients"
}

// StringArray is a custom type for []string that can be stored as JSON in database
type StringArray []string

// Scan implements sql.Scanner interface
func (s *StringArray) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringArray{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to unmarshal JSON value")
	}
	return json.Unmarshal(raw, s)
}

// Value implements driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Join returns a string with elements joined by the specified separator
func (s StringArray) Join(sep string) string {
	return strings.Join(s, sep)
}
