package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/store"
	"github.com/go-authgate/realmgate/internal/token"
	"github.com/go-authgate/realmgate/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GrantType is a supported token endpoint grant.
type GrantType int

const (
	GrantAuthorizationCode GrantType = iota + 1
	GrantRefreshToken
)

// ParseGrantType maps the grant_type form value onto a GrantType.
func ParseGrantType(s string) (GrantType, error) {
	switch s {
	case "authorization_code":
		return GrantAuthorizationCode, nil
	case "refresh_token":
		return GrantRefreshToken, nil
	default:
		return 0, ErrUnsupportedGrantType
	}
}

func (g GrantType) String() string {
	switch g {
	case GrantAuthorizationCode:
		return "authorization_code"
	case GrantRefreshToken:
		return "refresh_token"
	default:
		return "unknown"
	}
}

// CodeExchange is an authorization_code grant request.
type CodeExchange struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
	ClientID     string // optional; checked against the code when present
}

// RefreshExchange is a refresh_token grant request.
type RefreshExchange struct {
	RefreshToken string
	ClientID     string // optional; checked against the token when present
}

// TokenSet is a successful token endpoint response.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// TokenService redeems codes and refresh tokens and validates access tokens.
type TokenService struct {
	store   *store.Store
	config  *config.Config
	keys    *KeyService
	metrics metrics.Recorder
}

func NewTokenService(
	s *store.Store,
	cfg *config.Config,
	keys *KeyService,
	m metrics.Recorder,
) *TokenService {
	return &TokenService{store: s, config: cfg, keys: keys, metrics: m}
}

// ExchangeCode redeems an authorization code. The code is burned before the
// redirect URI and PKCE checks, so a failed attempt cannot be retried.
func (s *TokenService) ExchangeCode(
	ctx context.Context,
	realm *models.Realm,
	req CodeExchange,
) (*TokenSet, error) {
	switch {
	case req.Code == "":
		return nil, ErrCodeRequired
	case req.RedirectURI == "":
		return nil, ErrRedirectURIRequired
	case req.CodeVerifier == "":
		return nil, ErrCodeVerifierRequired
	}

	code, err := s.store.ConsumeAuthorizationCode(ctx, realm.ID, util.SHA256Hex(req.Code))
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.RecordTokenFailure(GrantAuthorizationCode.String(), "invalid_code")
		return nil, ErrInvalidAuthCode
	}
	if err != nil {
		return nil, fmt.Errorf("consume authorization code: %w", err)
	}

	if code.RedirectURI != req.RedirectURI {
		s.metrics.RecordTokenFailure(GrantAuthorizationCode.String(), "redirect_mismatch")
		return nil, ErrInvalidAuthCode
	}
	if req.ClientID != "" && req.ClientID != code.ClientID {
		s.metrics.RecordTokenFailure(GrantAuthorizationCode.String(), "client_mismatch")
		return nil, ErrInvalidAuthCode
	}
	if !util.VerifyPKCES256(req.CodeVerifier, code.CodeChallenge) {
		s.metrics.RecordTokenFailure(GrantAuthorizationCode.String(), "pkce")
		return nil, ErrPKCEVerificationFailed
	}

	set, err := s.issueTokens(ctx, realm, code.ClientID, code.UserID, code.Scopes, code.Nonce)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTokenIssued(GrantAuthorizationCode.String())
	return set, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// one is issued with the same client, user and scope.
func (s *TokenService) Refresh(
	ctx context.Context,
	realm *models.Realm,
	req RefreshExchange,
) (*TokenSet, error) {
	if req.RefreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	rt, err := s.store.ConsumeRefreshToken(ctx, realm.ID, util.SHA256Hex(req.RefreshToken))
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.RecordTokenFailure(GrantRefreshToken.String(), "invalid_refresh_token")
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if req.ClientID != "" && req.ClientID != rt.ClientID {
		s.metrics.RecordTokenFailure(GrantRefreshToken.String(), "client_mismatch")
		return nil, ErrInvalidRefreshToken
	}

	set, err := s.issueTokens(ctx, realm, rt.ClientID, rt.UserID, rt.Scopes, "")
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTokenIssued(GrantRefreshToken.String())
	return set, nil
}

// issueTokens signs an ID token and an access token with the realm's active
// key and stores a new refresh token.
func (s *TokenService) issueTokens(
	ctx context.Context,
	realm *models.Realm,
	clientID, userID, scope, nonce string,
) (*TokenSet, error) {
	user, err := s.store.GetUserByID(ctx, realm.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	signer, err := s.keys.Signer(ctx, realm.ID)
	if err != nil {
		return nil, err
	}
	issuer := s.config.Issuer(realm.Name)

	idToken, err := signer.GenerateIDToken(token.IDTokenParams{
		Issuer:            issuer,
		Subject:           user.ID,
		Audience:          clientID,
		Nonce:             nonce,
		PreferredUsername: user.Username,
		Email:             user.Email,
		Expiry:            s.config.IDTokenLifetime,
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := signer.GenerateAccessToken(token.AccessTokenParams{
		Issuer:   issuer,
		Subject:  user.ID,
		ClientID: clientID,
		Scope:    scope,
		Expiry:   s.config.AccessTokenLifetime,
	})
	if err != nil {
		return nil, err
	}

	refresh, err := util.NewOpaqueSecret()
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateRefreshToken(ctx, &models.RefreshToken{
		ID:        uuid.New().String(),
		RealmID:   realm.ID,
		ClientID:  clientID,
		UserID:    user.ID,
		TokenHash: refresh.Hash(),
		Scopes:    scope,
		ExpiresAt: time.Now().Add(s.config.RefreshTokenLifetime),
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	zap.L().Debug("tokens issued",
		zap.String("realm", realm.Name),
		zap.String("client_id", clientID),
		zap.String("user_id", user.ID),
		zap.String("kid", signer.Kid()),
	)

	return &TokenSet{
		AccessToken:  accessToken.TokenString,
		TokenType:    token.TokenTypeBearer,
		ExpiresIn:    int64(s.config.AccessTokenLifetime.Seconds()),
		IDToken:      idToken.TokenString,
		RefreshToken: refresh.Reveal(),
		Scope:        scope,
	}, nil
}

// ValidateAccessToken verifies a bearer access token issued by the realm and
// returns its claims. Every verification failure is ErrInvalidAccessToken.
func (s *TokenService) ValidateAccessToken(
	ctx context.Context,
	realm *models.Realm,
	raw string,
) (*token.Claims, error) {
	verifier, err := s.keys.Verifier(ctx, realm.ID, s.config.Issuer(realm.Name))
	if err != nil {
		return nil, err
	}

	claims, err := verifier.ValidateAccessToken(raw)
	if err != nil {
		s.metrics.RecordTokenValidation(false)
		return nil, ErrInvalidAccessToken
	}
	s.metrics.RecordTokenValidation(true)
	return claims, nil
}
