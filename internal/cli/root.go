// Package cli implements the realmgate command line: the server entry point
// and the administrative commands that manage realms, clients and users.
package cli

import (
	"github.com/go-authgate/realmgate/internal/config"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd creates the realmgate root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "realmgate",
		Short: "Multi-tenant OpenID Connect provider",
		Long: `realmgate is an OpenID Connect provider serving isolated realms.
Each realm has its own users, clients and signing keys, and exposes the
authorization code flow with PKCE under /realms/{realm}.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath,
		"Path to the TOML configuration file")

	cmd.AddCommand(
		newServeCommand(opts),
		newRealmCommand(opts),
		newClientCommand(opts),
		newUserCommand(opts),
		newVersionCommand(),
	)

	return cmd
}
