package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newClientCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage relying party clients",
	}

	cmd.AddCommand(
		newClientCreateCommand(opts),
		newClientListCommand(opts),
		newClientDeleteCommand(opts),
	)
	return cmd
}

func newClientCreateCommand(opts *rootOptions) *cobra.Command {
	var (
		realmName    string
		clientID     string
		redirectURIs []string
		scopes       []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a public client",
		Example: `  realmgate client create --realm acme --client-id app1 \
    --redirect-uri https://app1/cb --scope openid --scope email`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realm, err := a.realm(ctx, realmName)
				if err != nil {
					return err
				}
				client, err := a.clients.Create(ctx, realm.ID, clientID, redirectURIs, scopes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created client %s in realm %s (scopes: %s)\n",
					client.ClientID, realm.Name, strings.Join(client.AllowedScopes, " "))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&realmName, "realm", "", "Realm name")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Client identifier")
	cmd.Flags().StringArrayVar(&redirectURIs, "redirect-uri", nil, "Registered redirect URI (repeatable)")
	cmd.Flags().StringArrayVar(&scopes, "scope", nil, "Allowed scope (repeatable, defaults to openid profile email)")
	_ = cmd.MarkFlagRequired("realm")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("redirect-uri")

	return cmd
}

func newClientListCommand(opts *rootOptions) *cobra.Command {
	var realmName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients in a realm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realm, err := a.realm(ctx, realmName)
				if err != nil {
					return err
				}
				clients, err := a.clients.List(ctx, realm.ID)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "CLIENT_ID\tREDIRECT_URIS\tSCOPES")
				for _, c := range clients {
					fmt.Fprintf(w, "%s\t%s\t%s\n", c.ClientID,
						strings.Join(c.RedirectURIs, ","), strings.Join(c.AllowedScopes, " "))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&realmName, "realm", "", "Realm name")
	_ = cmd.MarkFlagRequired("realm")
	return cmd
}

func newClientDeleteCommand(opts *rootOptions) *cobra.Command {
	var realmName, clientID string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realm, err := a.realm(ctx, realmName)
				if err != nil {
					return err
				}
				if err := a.clients.Delete(ctx, realm.ID, clientID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted client %s from realm %s\n", clientID, realm.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&realmName, "realm", "", "Realm name")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Client identifier")
	_ = cmd.MarkFlagRequired("realm")
	_ = cmd.MarkFlagRequired("client-id")
	return cmd
}
