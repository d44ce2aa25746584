package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUserCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage realm users",
	}

	cmd.AddCommand(
		newUserAddCommand(opts),
		newUserListCommand(opts),
		newUserRemoveCommand(opts),
		newUserPasswdCommand(opts),
	)
	return cmd
}

func newUserAddCommand(opts *rootOptions) *cobra.Command {
	var realmName, username, email, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		Long: `Add a user to a realm. Without --password the password is read from the
terminal (entered twice) or from the first line of piped stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("password") {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}

			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realm, err := a.realm(ctx, realmName)
				if err != nil {
					return err
				}
				user, err := a.users.Create(ctx, realm.ID, username, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added user %s to realm %s (id %s)\n", user.Username, realm.Name, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&realmName, "realm", "", "Realm name")
	cmd.Flags().StringVar(&username, "username", "", "Login name, unique within the realm")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("realm")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUserListCommand(opts *rootOptions) *cobra.Command {
	var realmName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users in a realm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realm, err := a.realm(ctx, realmName)
				if err != nil {
					return err
				}
				users, err := a.users.List(ctx, realm.ID)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "USERNAME\tEMAIL\tID")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Email, u.ID)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&realmName, "realm", "", "Realm name")
	_ = cmd.MarkFlagRequired("realm")
	return cmd
}

func newUserRemoveCommand(opts *rootOptions) *cobra.Command {
	var realmName, username string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a user and their sessions and tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realm, err := a.realm(ctx, realmName)
				if err != nil {
					return err
				}
				if err := a.users.Delete(ctx, realm.ID, username); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed user %s from realm %s\n", username, realm.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&realmName, "realm", "", "Realm name")
	cmd.Flags().StringVar(&username, "username", "", "Login name")
	_ = cmd.MarkFlagRequired("realm")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUserPasswdCommand(opts *rootOptions) *cobra.Command {
	var realmName, username, password string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Reset a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("password") {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}

			return withAdmin(cmd, opts, func(ctx context.Context, a *admin) error {
				realm, err := a.realm(ctx, realmName)
				if err != nil {
					return err
				}
				if err := a.users.SetPassword(ctx, realm.ID, username, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s in realm %s\n", username, realm.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&realmName, "realm", "", "Realm name")
	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&password, "password", "", "New password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("realm")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
