package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body["error"]
}

// ============================================================
// GET /authorize
// ============================================================

func TestAuthorize_RendersLoginForm(t *testing.T) {
	e := newTestEnv(t)

	w := e.get("/realms/acme/authorize", authorizeQuery())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, `name="client_id" value="app1"`)
	assert.Contains(t, body, `name="state" value="xyz"`)
	assert.Contains(t, body, `name="scope" value="openid"`)

	ck := findCookie(w, "anz_csrf_acme")
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, "/realms/acme", ck.Path)
	assert.Equal(t, 300, ck.MaxAge)
	assert.False(t, ck.Secure)
}

func TestAuthorize_ParameterErrorsRenderErrorPage(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name    string
		mutate  func(q url.Values)
		message string
	}{
		{"response type", func(q url.Values) { q.Set("response_type", "token") }, "unsupported response_type"},
		{"no challenge", func(q url.Values) { q.Del("code_challenge") }, "code_challenge is required (PKCE)"},
		{"no method", func(q url.Values) { q.Del("code_challenge_method") }, "code_challenge_method is required (must be S256)"},
		{"plain", func(q url.Values) { q.Set("code_challenge_method", "plain") }, "only S256 code_challenge_method is supported"},
		{"lowercase method", func(q url.Values) { q.Set("code_challenge_method", "s256") }, "only S256 code_challenge_method is supported"},
		{"state too long", func(q url.Values) { q.Set("state", strings.Repeat("s", 1025)) }, "state is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := authorizeQuery()
			tt.mutate(q)
			w := e.get("/realms/acme/authorize", q)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), "<h1>Invalid request</h1>")
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Nil(t, findCookie(w, "anz_csrf_acme"))
		})
	}
}

func TestAuthorize_ParameterErrorBeforeUnknownRealm(t *testing.T) {
	e := newTestEnv(t)

	q := authorizeQuery()
	q.Del("code_challenge")
	w := e.get("/realms/globex/authorize", q)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "code_challenge is required (PKCE)")
}

func TestAuthorize_ClientErrors(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name    string
		mutate  func(q url.Values)
		message string
	}{
		{"unknown client", func(q url.Values) { q.Set("client_id", "app9") }, "unknown client_id"},
		{"redirect", func(q url.Values) { q.Set("redirect_uri", "https://app1/cb/") }, "redirect_uri not registered"},
		{"scope", func(q url.Values) { q.Set("scope", "openid admin") }, "invalid scope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := authorizeQuery()
			tt.mutate(q)
			w := e.get("/realms/acme/authorize", q)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, errorBody(t, w))
		})
	}
}

func TestAuthorize_UnknownRealm(t *testing.T) {
	e := newTestEnv(t)

	w := e.get("/realms/globex/authorize", authorizeQuery())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "realm 'globex' not found", errorBody(t, w))
}

func TestAuthorize_SilentReauthentication(t *testing.T) {
	e := newTestEnv(t)
	_, session := e.login(t)

	w := e.get("/realms/acme/authorize", authorizeQuery(), session)

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "app1", loc.Host)
	assert.NotEmpty(t, loc.Query().Get("code"))
	assert.Equal(t, "xyz", loc.Query().Get("state"))
}

func TestAuthorize_UnknownSessionShowsLogin(t *testing.T) {
	e := newTestEnv(t)

	w := e.get("/realms/acme/authorize", authorizeQuery(),
		&http.Cookie{Name: "anz_session_acme", Value: "forged"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<form")
}

// ============================================================
// POST /authorize
// ============================================================

func TestLogin_Success(t *testing.T) {
	e := newTestEnv(t)
	ck, csrf := e.loginForm(t)

	w := e.postForm("/realms/acme/authorize", loginValues(csrf, testUsername, testPassword), ck)

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "https", loc.Scheme)
	assert.Equal(t, "/cb", loc.Path)
	assert.NotEmpty(t, loc.Query().Get("code"))
	assert.Equal(t, "xyz", loc.Query().Get("state"))

	session := findCookie(w, "anz_session_acme")
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, "/realms/acme", session.Path)
	assert.Equal(t, 86400, session.MaxAge)

	cleared := findCookie(w, "anz_csrf_acme")
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestLogin_CSRFMismatch(t *testing.T) {
	e := newTestEnv(t)
	ck, _ := e.loginForm(t)

	for _, tc := range []struct {
		name    string
		token   string
		cookies []*http.Cookie
	}{
		{"wrong token", "wrong", []*http.Cookie{ck}},
		{"no cookie", ck.Value, nil},
		{"empty", "", []*http.Cookie{{Name: "anz_csrf_acme", Value: ""}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := e.postForm("/realms/acme/authorize",
				loginValues(tc.token, testUsername, testPassword), tc.cookies...)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid request. Please try again.")
			assert.Nil(t, findCookie(w, "anz_session_acme"))
			fresh := findCookie(w, "anz_csrf_acme")
			require.NotNil(t, fresh)
			assert.NotEqual(t, ck.Value, fresh.Value)
		})
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	e := newTestEnv(t)

	for _, creds := range [][2]string{
		{testUsername, "wrong"},
		{"mallory", testPassword},
	} {
		ck, csrf := e.loginForm(t)
		w := e.postForm("/realms/acme/authorize", loginValues(csrf, creds[0], creds[1]), ck)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid username or password")
		assert.Nil(t, findCookie(w, "anz_session_acme"))
	}
}

func TestLogin_RevalidatesParameters(t *testing.T) {
	e := newTestEnv(t)
	ck, csrf := e.loginForm(t)

	form := loginValues(csrf, testUsername, testPassword)
	form.Set("redirect_uri", "https://evil.example.com/cb")
	w := e.postForm("/realms/acme/authorize", form, ck)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "redirect_uri not registered", errorBody(t, w))

	form = loginValues(csrf, testUsername, testPassword)
	form.Del("code_challenge")
	w = e.postForm("/realms/acme/authorize", form, ck)
	assert.Equal(t, "code_challenge is required (PKCE)", errorBody(t, w))
}

func TestLogin_SecureCookiesOverHTTPS(t *testing.T) {
	e := newTestEnv(t)
	e.cfg.IssuerBaseURL = "https://id.example.com"

	_, session := e.login(t)
	assert.True(t, session.Secure)
}
