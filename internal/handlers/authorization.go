package handlers

import (
	"errors"
	"net/http"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/services"
	"github.com/go-authgate/realmgate/internal/store"
	"github.com/go-authgate/realmgate/internal/templates"
	"github.com/go-authgate/realmgate/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Login form messages
const (
	msgInvalidRequest     = "Invalid request. Please try again."
	msgInvalidCredentials = "Invalid username or password"
	titleInvalidRequest   = "Invalid request"
)

// Authorize outcomes for metrics
const (
	outcomeLoginForm = "login_form"
	outcomeSilent    = "silent"
	outcomeLogin     = "login"
	outcomeRejected  = "rejected"
)

// AuthorizationHandler serves the authorization endpoint: the login form,
// credential check, session establishment and code issuance.
type AuthorizationHandler struct {
	realms   *services.RealmService
	authz    *services.AuthorizationService
	users    *services.UserService
	sessions *services.SessionService
	config   *config.Config
	metrics  metrics.Recorder
}

func NewAuthorizationHandler(
	realms *services.RealmService,
	authz *services.AuthorizationService,
	users *services.UserService,
	sessions *services.SessionService,
	cfg *config.Config,
	m metrics.Recorder,
) *AuthorizationHandler {
	return &AuthorizationHandler{
		realms:   realms,
		authz:    authz,
		users:    users,
		sessions: sessions,
		config:   cfg,
		metrics:  m,
	}
}

// authorizeParams reads the OAuth parameters from the query string (GET)
// or the form body (POST).
func authorizeParams(get func(string) string) services.AuthorizeParams {
	return services.AuthorizeParams{
		ResponseType:        get("response_type"),
		ClientID:            get("client_id"),
		RedirectURI:         get("redirect_uri"),
		Scope:               get("scope"),
		State:               get("state"),
		Nonce:               get("nonce"),
		CodeChallenge:       get("code_challenge"),
		CodeChallengeMethod: get("code_challenge_method"),
	}
}

func hiddenFields(p services.AuthorizeParams) []templates.HiddenField {
	return []templates.HiddenField{
		{Name: "response_type", Value: p.ResponseType},
		{Name: "client_id", Value: p.ClientID},
		{Name: "redirect_uri", Value: p.RedirectURI},
		{Name: "scope", Value: p.Scope},
		{Name: "state", Value: p.State},
		{Name: "nonce", Value: p.Nonce},
		{Name: "code_challenge", Value: p.CodeChallenge},
		{Name: "code_challenge_method", Value: p.CodeChallengeMethod},
	}
}

// Authorize handles GET /realms/:realm/authorize.
func (h *AuthorizationHandler) Authorize(c *gin.Context) {
	params := authorizeParams(c.Query)
	if err := services.CheckParams(&params); err != nil {
		h.rejectPage(c, err)
		return
	}

	realm, ok := resolveRealm(c, h.realms)
	if !ok {
		h.metrics.RecordAuthorizeRequest(outcomeRejected)
		return
	}

	req, err := h.authz.ValidateAuthorizationRequest(c.Request.Context(), realm, params)
	if err != nil {
		h.reject(c, err)
		return
	}

	// Silent re-authentication with a live session.
	if raw, err := c.Cookie(sessionCookieName(realm.Name)); err == nil {
		session, err := h.sessions.Lookup(c.Request.Context(), realm.ID, raw)
		switch {
		case err == nil:
			h.metrics.RecordAuthorizeRequest(outcomeSilent)
			h.redirectWithCode(c, req, session.UserID, true)
			return
		case !errors.Is(err, store.ErrNotFound):
			respondError(c, err)
			return
		}
	}

	h.metrics.RecordAuthorizeRequest(outcomeLoginForm)
	h.renderLogin(c, realm, req.Params, "", "")
}

// Login handles POST /realms/:realm/authorize.
func (h *AuthorizationHandler) Login(c *gin.Context) {
	realm, ok := resolveRealm(c, h.realms)
	if !ok {
		return
	}

	params := authorizeParams(c.PostForm)
	username := c.PostForm("username")

	cookie, _ := c.Cookie(csrfCookieName(realm.Name))
	if !util.VerifyCSRFToken(c.PostForm(csrfFormField), cookie) {
		zap.L().Warn("csrf check failed", zap.String("realm", realm.Name))
		h.renderLogin(c, realm, params, username, msgInvalidRequest)
		return
	}

	req, err := h.authz.ValidateAuthorizationRequest(c.Request.Context(), realm, params)
	if err != nil {
		h.reject(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), realm.ID, username, c.PostForm("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.renderLogin(c, realm, req.Params, username, msgInvalidCredentials)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	secret, _, err := h.sessions.Create(c.Request.Context(), realm.ID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.RecordSessionCreated()

	secure := h.config.SecureCookies()
	http.SetCookie(c.Writer, realmCookie(realm.Name, sessionCookieName(realm.Name),
		secret.Reveal(), h.sessions.Lifetime(), secure))
	http.SetCookie(c.Writer, realmCookie(realm.Name, csrfCookieName(realm.Name), "", 0, secure))

	h.metrics.RecordAuthorizeRequest(outcomeLogin)
	h.redirectWithCode(c, req, user.ID, false)
}

// renderLogin issues a fresh CSRF token, sets its cookie and renders the form.
func (h *AuthorizationHandler) renderLogin(
	c *gin.Context,
	realm *models.Realm,
	params services.AuthorizeParams,
	username, message string,
) {
	csrf, err := util.GenerateCSRFToken()
	if err != nil {
		respondError(c, err)
		return
	}
	http.SetCookie(c.Writer, realmCookie(realm.Name, csrfCookieName(realm.Name),
		csrf, h.config.AuthCodeLifetime, h.config.SecureCookies()))
	c.Header("Cache-Control", "no-store")

	templates.RenderTempl(c, http.StatusOK, templates.LoginPage(templates.LoginPageProps{
		BaseProps: templates.BaseProps{CSRFToken: csrf},
		Realm:     realm.Name,
		Action:    realmPath(realm.Name) + "/authorize",
		Error:     message,
		Username:  username,
		Hidden:    hiddenFields(params),
	}))
}

func (h *AuthorizationHandler) redirectWithCode(
	c *gin.Context,
	req *services.AuthorizationRequest,
	userID string,
	silent bool,
) {
	code, err := h.authz.CreateAuthorizationCode(c.Request.Context(), req, userID, silent)
	if err != nil {
		respondError(c, err)
		return
	}
	location, err := services.BuildRedirectURL(req.Params.RedirectURI, code, req.Params.State)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, location)
}

func (h *AuthorizationHandler) reject(c *gin.Context, err error) {
	h.metrics.RecordAuthorizeRequest(outcomeRejected)
	respondError(c, err)
}

// rejectPage shows a malformed browser request as an HTML error page with
// the same status and message the JSON body would carry.
func (h *AuthorizationHandler) rejectPage(c *gin.Context, err error) {
	ae := classify(err)
	if ae.kind != kindBadRequest {
		h.reject(c, err)
		return
	}

	h.metrics.RecordAuthorizeRequest(outcomeRejected)
	c.Header("Cache-Control", "no-store")
	templates.RenderTempl(c, ae.kind.status(), templates.ErrorPage(templates.ErrorPageProps{
		Title:   titleInvalidRequest,
		Message: ae.message,
	}))
	c.Abort()
}
