package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/store"
	"github.com/go-authgate/realmgate/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ResponseTypeCode = "code"
	DefaultScope     = "openid"

	// maxStateLength bounds the opaque values echoed back to the client.
	maxStateLength = 1024
)

// AuthorizeParams are the OAuth 2.0 parameters of an authorization request.
// The login form carries them as hidden fields between GET and POST.
type AuthorizeParams struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizationRequest is a validated authorization request.
type AuthorizationRequest struct {
	Realm  *models.Realm
	Client *models.Client
	Params AuthorizeParams
}

// AuthorizationService validates authorization requests and mints codes.
type AuthorizationService struct {
	store   *store.Store
	config  *config.Config
	metrics metrics.Recorder
}

func NewAuthorizationService(
	s *store.Store,
	cfg *config.Config,
	m metrics.Recorder,
) *AuthorizationService {
	return &AuthorizationService{store: s, config: cfg, metrics: m}
}

// CheckParams validates the parameters that need no database access.
// An empty scope is replaced by the default scope.
func CheckParams(p *AuthorizeParams) error {
	if p.ResponseType != ResponseTypeCode {
		return ErrUnsupportedResponseType
	}
	if p.CodeChallenge == "" {
		return ErrCodeChallengeRequired
	}
	switch p.CodeChallengeMethod {
	case "":
		return ErrCodeChallengeMethodRequired
	case util.PKCEMethodS256:
	default:
		return ErrUnsupportedChallengeMethod
	}
	if len(p.State) > maxStateLength {
		return ErrStateTooLong
	}
	if len(p.Nonce) > maxStateLength {
		return ErrNonceTooLong
	}
	if strings.TrimSpace(p.Scope) == "" {
		p.Scope = DefaultScope
	}
	return nil
}

// ValidateAuthorizationRequest checks the parameters against the realm's
// registered client. The redirect URI must match a registered one exactly.
func (s *AuthorizationService) ValidateAuthorizationRequest(
	ctx context.Context,
	realm *models.Realm,
	params AuthorizeParams,
) (*AuthorizationRequest, error) {
	if err := CheckParams(&params); err != nil {
		return nil, err
	}

	client, err := s.store.GetClient(ctx, realm.ID, params.ClientID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownClient
	}
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}

	if !client.HasRedirectURI(params.RedirectURI) {
		return nil, ErrRedirectURINotRegistered
	}
	if !client.AllowsScopes(params.Scope) {
		return nil, ErrInvalidScope
	}

	return &AuthorizationRequest{Realm: realm, Client: client, Params: params}, nil
}

// CreateAuthorizationCode mints a single-use code bound to the request's
// client, redirect URI, scope, PKCE challenge and nonce.
func (s *AuthorizationService) CreateAuthorizationCode(
	ctx context.Context,
	req *AuthorizationRequest,
	userID string,
	silent bool,
) (util.OpaqueSecret, error) {
	secret, err := util.NewOpaqueSecret()
	if err != nil {
		return util.OpaqueSecret{}, err
	}

	code := &models.AuthorizationCode{
		ID:            uuid.New().String(),
		RealmID:       req.Realm.ID,
		ClientID:      req.Client.ClientID,
		UserID:        userID,
		CodeHash:      secret.Hash(),
		RedirectURI:   req.Params.RedirectURI,
		Scopes:        req.Params.Scope,
		CodeChallenge: req.Params.CodeChallenge,
		Nonce:         req.Params.Nonce,
		ExpiresAt:     time.Now().Add(s.config.AuthCodeLifetime),
	}
	if err := s.store.CreateAuthorizationCode(ctx, code); err != nil {
		return util.OpaqueSecret{}, fmt.Errorf("store authorization code: %w", err)
	}

	s.metrics.RecordAuthorizationCodeIssued(silent)
	zap.L().Debug("authorization code issued",
		zap.String("realm", req.Realm.Name),
		zap.String("client_id", req.Client.ClientID),
		zap.String("user_id", userID),
		zap.Bool("silent", silent),
	)
	return secret, nil
}

// BuildRedirectURL appends code and state to redirectURI, keeping any query
// parameters the registered URI already has.
func BuildRedirectURL(redirectURI string, code util.OpaqueSecret, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("parse redirect_uri: %w", err)
	}
	q := u.Query()
	q.Set("code", code.Reveal())
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
