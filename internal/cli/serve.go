package cli

import (
	"fmt"

	"github.com/go-authgate/realmgate/internal/bootstrap"
	"github.com/go-authgate/realmgate/internal/config"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := bootstrap.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return bootstrap.Run(cmd.Context(), cfg, logger)
		},
	}
}
