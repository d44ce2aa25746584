package bootstrap

import (
	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/handlers"
	"github.com/go-authgate/realmgate/internal/metrics"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	authorization *handlers.AuthorizationHandler
	token         *handlers.TokenHandler
	oidc          *handlers.OIDCHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	s serviceSet,
	prometheusMetrics metrics.Recorder,
) handlerSet {
	return handlerSet{
		authorization: handlers.NewAuthorizationHandler(
			s.Realms,
			s.Authorization,
			s.Users,
			s.Sessions,
			cfg,
			prometheusMetrics,
		),
		token: handlers.NewTokenHandler(s.Realms, s.Tokens),
		oidc:  handlers.NewOIDCHandler(s.Realms, s.Keys, s.Tokens, s.Users, cfg),
	}
}
