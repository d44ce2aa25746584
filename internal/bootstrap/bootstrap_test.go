package bootstrap

import (
	"context"
	"errors"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/go-authgate/realmgate/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var hiddenInputPattern = regexp.MustCompile(`<input type="hidden" name="([^"]+)" value="([^"]*)">`)

func newTestApp(t *testing.T, mutate func(cfg *config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.DatabaseDSN = ":memory:"
	if mutate != nil {
		mutate(cfg)
	}

	app, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

// seedAcme creates realm acme, client app1 and user alice.
func seedAcme(t *testing.T, app *Application) {
	t.Helper()
	ctx := context.Background()
	realm, _, err := app.Services.Realms.Create(ctx, "acme")
	require.NoError(t, err)
	_, err = app.Services.Clients.Create(ctx, realm.ID, "app1", []string{"https://app1/cb"}, nil)
	require.NoError(t, err)
	_, err = app.Services.Users.Create(ctx, realm.ID, "alice", "alice@example.com", "secret")
	require.NoError(t, err)
}

func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// ============================================================
// End-to-end authorization code flow
// ============================================================

func TestEndToEnd_AuthorizationCodeFlow(t *testing.T) {
	app := newTestApp(t, nil)
	seedAcme(t, app)

	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)

	conf := &oauth2.Config{
		ClientID:    "app1",
		RedirectURL: "https://app1/cb",
		Scopes:      []string{"openid", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/realms/acme/authorize",
			TokenURL:  srv.URL + "/realms/acme/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	verifier := oauth2.GenerateVerifier()
	client := browser(t)

	// 1. authorize: login form
	resp, err := client.Get(conf.AuthCodeURL("st-123", oauth2.S256ChallengeOption(verifier)))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	form := url.Values{}
	for _, m := range hiddenInputPattern.FindAllStringSubmatch(string(body), -1) {
		form.Set(m[1], html.UnescapeString(m[2]))
	}
	require.NotEmpty(t, form.Get("csrf_token"))
	require.Equal(t, "app1", form.Get("client_id"))
	form.Set("username", "alice")
	form.Set("password", "secret")

	// 2. credentials: redirect with code and state
	resp, err = client.PostForm(srv.URL+"/realms/acme/authorize", form)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "app1", loc.Host)
	assert.Equal(t, "/cb", loc.Path)
	assert.Equal(t, "st-123", loc.Query().Get("state"))
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)

	// 3. token exchange
	tok, err := conf.Exchange(context.Background(), code, oauth2.VerifierOption(verifier))
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
	assert.NotEmpty(t, tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.NotEmpty(t, tok.Extra("id_token"))
	assert.Equal(t, "openid email", tok.Extra("scope"))

	// 4. replay
	_, err = conf.Exchange(context.Background(), code, oauth2.VerifierOption(verifier))
	var rerr *oauth2.RetrieveError
	require.True(t, errors.As(err, &rerr), "expected RetrieveError, got %v", err)
	assert.Equal(t, http.StatusBadRequest, rerr.Response.StatusCode)
	assert.Equal(t, "invalid or expired authorization code", rerr.ErrorCode)

	// 5. the access token works at userinfo
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/realms/acme/userinfo", nil)
	require.NoError(t, err)
	tok.SetAuthHeader(req)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	info, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(info), `"preferred_username":"alice"`)

	// 6. refresh through the oauth2 token source
	stale := &oauth2.Token{RefreshToken: tok.RefreshToken}
	refreshed, err := conf.TokenSource(context.Background(), stale).Token()
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, tok.RefreshToken, refreshed.RefreshToken)

	// 7. a second authorize request re-authenticates silently
	resp, err = client.Get(conf.AuthCodeURL("st-456", oauth2.S256ChallengeOption(verifier)))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "https://app1/cb?"))
}

// ============================================================
// Router
// ============================================================

func TestRouter_HealthAndNotFound(t *testing.T) {
	app := newTestApp(t, nil)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/realms/acme/jwks", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"realm 'acme' not found"}`, w.Body.String())
}

func TestRouter_TokenRateLimit(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) { cfg.TokenRateLimit = 2 })
	seedAcme(t, app)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/realms/acme/token",
			strings.NewReader("grant_type=refresh_token&refresh_token=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.9:1234"
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, post())
	assert.Equal(t, http.StatusBadRequest, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}

func TestRouter_RateLimitDisabled(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.EnableRateLimit = false
		cfg.TokenRateLimit = 1
	})

	for range 3 {
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/realms/acme/token", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestCreateHTTPServer(t *testing.T) {
	cfg := config.Default()
	srv := createHTTPServer(cfg, http.NewServeMux())

	assert.Equal(t, "127.0.0.1:8080", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
	assert.NotZero(t, srv.IdleTimeout)
}

func TestNewLogger(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	logger, err := NewLogger("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.Same(t, logger, zap.L())

	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestNew_UnreachableRedis(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseDSN = ":memory:"
	cfg.RateLimitStore = config.RateLimitStoreRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
