package services

import (
	"context"
	"testing"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/store"

	"github.com/stretchr/testify/require"
)

const (
	testRealm       = "acme"
	testClientID    = "app1"
	testRedirectURI = "https://app.example.com/callback"
	testUsername    = "alice"
	testPassword    = "correct horse battery staple" //nolint:gosec

	testPKCEVerifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	// S256 challenge of testPKCEVerifier (RFC 7636 Appendix B)
	testPKCEChallenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fixture wires every service against one in-memory store seeded with the
// acme realm, the app1 client and the user alice.
type fixture struct {
	store    *store.Store
	cfg      *config.Config
	realm    *models.Realm
	client   *models.Client
	user     *models.User
	realms   *RealmService
	keys     *KeyService
	clients  *ClientService
	users    *UserService
	sessions *SessionService
	authz    *AuthorizationService
	tokens   *TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	s := setupTestStore(t)
	cfg := config.Default()
	m := metrics.NewNoopMetrics()

	f := &fixture{
		store:    s,
		cfg:      cfg,
		realms:   NewRealmService(s),
		keys:     NewKeyService(s),
		clients:  NewClientService(s),
		users:    NewUserService(s, m),
		sessions: NewSessionService(s, cfg),
		authz:    NewAuthorizationService(s, cfg, m),
	}
	f.tokens = NewTokenService(s, cfg, f.keys, m)

	realm, _, err := f.realms.Create(ctx, testRealm)
	require.NoError(t, err)
	f.realm = realm

	client, err := f.clients.Create(ctx, realm.ID, testClientID, []string{testRedirectURI}, nil)
	require.NoError(t, err)
	f.client = client

	user, err := f.users.Create(ctx, realm.ID, testUsername, "alice@example.com", testPassword)
	require.NoError(t, err)
	f.user = user

	return f
}

func (f *fixture) params() AuthorizeParams {
	return AuthorizeParams{
		ResponseType:        ResponseTypeCode,
		ClientID:            testClientID,
		RedirectURI:         testRedirectURI,
		Scope:               "openid profile",
		State:               "xyz",
		Nonce:               "n-0S6_WzA2Mj",
		CodeChallenge:       testPKCEChallenge,
		CodeChallengeMethod: "S256",
	}
}

// issueCode validates the default request and mints a code for alice.
func (f *fixture) issueCode(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	req, err := f.authz.ValidateAuthorizationRequest(ctx, f.realm, f.params())
	require.NoError(t, err)
	code, err := f.authz.CreateAuthorizationCode(ctx, req, f.user.ID, false)
	require.NoError(t, err)
	return code.Reveal()
}

func (f *fixture) exchange(code string) CodeExchange {
	return CodeExchange{
		Code:         code,
		RedirectURI:  testRedirectURI,
		CodeVerifier: testPKCEVerifier,
		ClientID:     testClientID,
	}
}
