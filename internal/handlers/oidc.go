package handlers

import (
	"net/http"
	"strings"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/services"
	"github.com/go-authgate/realmgate/internal/token"

	"github.com/gin-gonic/gin"
)

// OIDCHandler handles OIDC Discovery, JWKS, UserInfo and the password endpoint.
type OIDCHandler struct {
	realms *services.RealmService
	keys   *services.KeyService
	tokens *services.TokenService
	users  *services.UserService
	config *config.Config
}

// NewOIDCHandler creates a new OIDCHandler.
func NewOIDCHandler(
	realms *services.RealmService,
	keys *services.KeyService,
	tokens *services.TokenService,
	users *services.UserService,
	cfg *config.Config,
) *OIDCHandler {
	return &OIDCHandler{
		realms: realms,
		keys:   keys,
		tokens: tokens,
		users:  users,
		config: cfg,
	}
}

// discoveryMetadata holds the OIDC Provider Metadata returned by the discovery endpoint.
type discoveryMetadata struct {
	Issuer                           string   `json:"issuer"`
	AuthorizationEndpoint            string   `json:"authorization_endpoint"`
	TokenEndpoint                    string   `json:"token_endpoint"`
	UserinfoEndpoint                 string   `json:"userinfo_endpoint"`
	JWKSURI                          string   `json:"jwks_uri"`
	ResponseTypesSupported           []string `json:"response_types_supported"`
	SubjectTypesSupported            []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported"`
	ScopesSupported                  []string `json:"scopes_supported"`
	TokenEndpointAuthMethods         []string `json:"token_endpoint_auth_methods_supported"`
	GrantTypesSupported              []string `json:"grant_types_supported"`
	ClaimsSupported                  []string `json:"claims_supported"`
	CodeChallengeMethodsSupported    []string `json:"code_challenge_methods_supported"`
}

// Discovery handles GET /realms/:realm/.well-known/openid-configuration.
func (h *OIDCHandler) Discovery(c *gin.Context) {
	realm, ok := resolveRealm(c, h.realms)
	if !ok {
		return
	}

	issuer := h.config.Issuer(realm.Name)
	c.JSON(http.StatusOK, discoveryMetadata{
		Issuer:                           issuer,
		AuthorizationEndpoint:            issuer + "/authorize",
		TokenEndpoint:                    issuer + "/token",
		UserinfoEndpoint:                 issuer + "/userinfo",
		JWKSURI:                          issuer + "/jwks",
		ResponseTypesSupported:           []string{services.ResponseTypeCode},
		SubjectTypesSupported:            []string{"public"},
		IDTokenSigningAlgValuesSupported: []string{"EdDSA"},
		ScopesSupported:                  models.DefaultAllowedScopes,
		TokenEndpointAuthMethods:         []string{"none"},
		GrantTypesSupported: []string{
			services.GrantAuthorizationCode.String(),
			services.GrantRefreshToken.String(),
		},
		ClaimsSupported: []string{
			"sub", "iss", "aud", "exp", "iat", "nonce", "preferred_username", "email",
		},
		CodeChallengeMethodsSupported: []string{"S256"},
	})
}

// JWKS handles GET /realms/:realm/jwks.
func (h *OIDCHandler) JWKS(c *gin.Context) {
	realm, ok := resolveRealm(c, h.realms)
	if !ok {
		return
	}

	set, err := h.keys.JWKS(c.Request.Context(), realm.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, set)
}

// UserInfo handles GET /realms/:realm/userinfo.
func (h *OIDCHandler) UserInfo(c *gin.Context) {
	realm, claims, ok := h.authenticate(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), realm.ID, claims.Subject)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sub":                user.ID,
		"preferred_username": user.Username,
		"email":              user.Email,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /realms/:realm/password.
func (h *OIDCHandler) ChangePassword(c *gin.Context) {
	realm, claims, ok := h.authenticate(c)
	if !ok {
		return
	}

	var body changePasswordRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, badRequest("invalid request body"))
		return
	}

	if err := h.users.ChangePassword(
		c.Request.Context(),
		realm.ID,
		claims.Subject,
		body.CurrentPassword,
		body.NewPassword,
	); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}

// authenticate resolves the realm and validates the bearer access token.
func (h *OIDCHandler) authenticate(c *gin.Context) (*models.Realm, *token.Claims, bool) {
	realm, ok := resolveRealm(c, h.realms)
	if !ok {
		return nil, nil, false
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		respondError(c, unauthorized("missing Authorization header"))
		return nil, nil, false
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		respondError(c, unauthorized("expected Bearer token"))
		return nil, nil, false
	}

	claims, err := h.tokens.ValidateAccessToken(c.Request.Context(), realm, raw)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return realm, claims, true
}
