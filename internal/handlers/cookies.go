package handlers

import (
	"net/http"
	"time"
)

const (
	csrfCookiePrefix    = "anz_csrf_"
	sessionCookiePrefix = "anz_session_"
	csrfFormField       = "csrf_token"
)

func csrfCookieName(realm string) string    { return csrfCookiePrefix + realm }
func sessionCookieName(realm string) string { return sessionCookiePrefix + realm }

func realmPath(realm string) string { return "/realms/" + realm }

// realmCookie builds an HttpOnly, SameSite=Lax cookie scoped to the realm's
// path. A zero maxAge deletes the cookie.
func realmCookie(realm, name, value string, maxAge time.Duration, secure bool) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     realmPath(realm),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	}
	if maxAge <= 0 {
		ck.Value = ""
		ck.MaxAge = -1
	}
	return ck
}
