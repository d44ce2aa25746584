package cli

import (
	"context"
	"fmt"

	"github.com/go-authgate/realmgate/internal/bootstrap"
	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/services"

	"github.com/spf13/cobra"
)

// admin holds the services used by one-shot administrative commands.
type admin struct {
	realms  *services.RealmService
	keys    *services.KeyService
	clients *services.ClientService
	users   *services.UserService
}

// withAdmin opens the configured store, runs fn and closes the store again.
func withAdmin(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *admin) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	db, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return fn(ctx, &admin{
		realms:  services.NewRealmService(db),
		keys:    services.NewKeyService(db),
		clients: services.NewClientService(db),
		users:   services.NewUserService(db, metrics.NewNoopMetrics()),
	})
}

// realm resolves a realm by name for commands that take --realm.
func (a *admin) realm(ctx context.Context, name string) (*models.Realm, error) {
	if name == "" {
		return nil, fmt.Errorf("--realm is required")
	}
	return a.realms.Resolve(ctx, name)
}
