package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRealmCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realm",
		Short: "Manage realms",
	}

	cmd.AddCommand(
		newRealmCreateCommand(opts),
		newRealmListCommand(opts),
		newRealmDeleteCommand(opts),
		newRealmRotateKeyCommand(opts),
	)
	return cmd
}

func newRealmCreateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a realm and its first signing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realm, key, err := a.realms.Create(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created realm %s (id %s, kid %s)\n", realm.Name, realm.ID, key.Kid)
				return nil
			})
		},
	}
}

func newRealmListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List realms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realms, err := a.realms.List(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tID\tCREATED")
				for _, r := range realms {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.ID, r.CreatedAt.UTC().Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	}
}

func newRealmDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a realm and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				if err := a.realms.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted realm %s\n", args[0])
				return nil
			})
		},
	}
}

func newRealmRotateKeyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate-key <name>",
		Short: "Generate a new signing key for a realm",
		Long: `Generate a new Ed25519 signing key. The new key signs all tokens issued
from now on; earlier keys stay published in the JWKS so tokens they signed
keep validating until they expire.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realm, err := a.realms.Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				key, err := a.keys.RotateKey(ctx, realm.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Realm %s now signs with kid %s\n", realm.Name, key.Kid)
				return nil
			})
		},
	}
}
