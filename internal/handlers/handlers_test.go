package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/services"
	"github.com/go-authgate/realmgate/internal/store"
	"github.com/go-authgate/realmgate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testRealm        = "acme"
	testClientID     = "app1"
	testRedirectURI  = "https://app1/cb"
	testUsername     = "alice"
	testPassword     = "secret" //nolint:gosec
	testPKCEVerifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
)

var csrfFieldPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

type testEnv struct {
	router *gin.Engine
	cfg    *config.Config
	store  *store.Store
	realm  *models.Realm
	user   *models.User
	realms *services.RealmService
	keys   *services.KeyService
	users  *services.UserService
	tokens *services.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	s, err := store.New(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	cfg := config.Default()
	m := metrics.NewNoopMetrics()

	realms := services.NewRealmService(s)
	keys := services.NewKeyService(s)
	clients := services.NewClientService(s)
	users := services.NewUserService(s, m)
	sessions := services.NewSessionService(s, cfg)
	authz := services.NewAuthorizationService(s, cfg, m)
	tokens := services.NewTokenService(s, cfg, keys, m)

	realm, _, err := realms.Create(ctx, testRealm)
	require.NoError(t, err)
	_, err = clients.Create(ctx, realm.ID, testClientID, []string{testRedirectURI}, nil)
	require.NoError(t, err)
	user, err := users.Create(ctx, realm.ID, testUsername, "alice@example.com", testPassword)
	require.NoError(t, err)

	authHandler := NewAuthorizationHandler(realms, authz, users, sessions, cfg, m)
	tokenHandler := NewTokenHandler(realms, tokens)
	oidcHandler := NewOIDCHandler(realms, keys, tokens, users, cfg)

	r := gin.New()
	r.GET("/health", Health(s))
	g := r.Group("/realms/:realm")
	g.GET("/authorize", authHandler.Authorize)
	g.POST("/authorize", authHandler.Login)
	g.POST("/token", tokenHandler.Token)
	g.GET("/.well-known/openid-configuration", oidcHandler.Discovery)
	g.GET("/jwks", oidcHandler.JWKS)
	g.GET("/userinfo", oidcHandler.UserInfo)
	g.POST("/password", oidcHandler.ChangePassword)

	return &testEnv{
		router: r,
		cfg:    cfg,
		store:  s,
		realm:  realm,
		user:   user,
		realms: realms,
		keys:   keys,
		users:  users,
		tokens: tokens,
	}
}

func authorizeQuery() url.Values {
	return url.Values{
		"response_type":         {"code"},
		"client_id":             {testClientID},
		"redirect_uri":          {testRedirectURI},
		"state":                 {"xyz"},
		"nonce":                 {"n-123"},
		"code_challenge":        {util.PKCEChallengeS256(testPKCEVerifier)},
		"code_challenge_method": {"S256"},
	}
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, q url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	target := path
	if q != nil {
		target += "?" + q.Encode()
	}
	return e.do(httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookies...)
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// loginForm fetches the login page and returns the CSRF cookie and form token.
func (e *testEnv) loginForm(t *testing.T) (*http.Cookie, string) {
	t.Helper()
	w := e.get("/realms/acme/authorize", authorizeQuery())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ck := findCookie(w, "anz_csrf_acme")
	require.NotNil(t, ck)
	m := csrfFieldPattern.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2)
	return ck, m[1]
}

func loginValues(csrf, username, password string) url.Values {
	form := authorizeQuery()
	form.Set("csrf_token", csrf)
	form.Set("username", username)
	form.Set("password", password)
	return form
}

// login drives GET+POST authorize and returns the redirect location and
// the session cookie.
func (e *testEnv) login(t *testing.T) (*url.URL, *http.Cookie) {
	t.Helper()
	ck, csrf := e.loginForm(t)
	w := e.postForm("/realms/acme/authorize", loginValues(csrf, testUsername, testPassword), ck)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	session := findCookie(w, "anz_session_acme")
	require.NotNil(t, session)
	return loc, session
}

func codeExchangeForm(code string) url.Values {
	return url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {testRedirectURI},
		"code_verifier": {testPKCEVerifier},
		"client_id":     {testClientID},
	}
}
