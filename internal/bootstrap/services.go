package bootstrap

import (
	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/services"
	"github.com/go-authgate/realmgate/internal/store"
)

// serviceSet holds all business services
type serviceSet struct {
	Realms        *services.RealmService
	Keys          *services.KeyService
	Clients       *services.ClientService
	Users         *services.UserService
	Sessions      *services.SessionService
	Authorization *services.AuthorizationService
	Tokens        *services.TokenService
}

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	prometheusMetrics metrics.Recorder,
) serviceSet {
	keys := services.NewKeyService(db)
	return serviceSet{
		Realms:        services.NewRealmService(db),
		Keys:          keys,
		Clients:       services.NewClientService(db),
		Users:         services.NewUserService(db, prometheusMetrics),
		Sessions:      services.NewSessionService(db, cfg),
		Authorization: services.NewAuthorizationService(db, cfg, prometheusMetrics),
		Tokens:        services.NewTokenService(db, cfg, keys, prometheusMetrics),
	}
}
