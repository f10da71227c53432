package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rpgpanel/internal/client"
	"rpgpanel/internal/config"
	"rpgpanel/internal/store"
)

func loginCmd() *cobra.Command {
	var token string
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the bearer token used for API requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(token) == "" {
				return fmt.Errorf("--token is required")
			}
			return runLogin(strings.TrimSpace(token), strings.TrimSpace(username))
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token issued by the RPG API")
	cmd.Flags().StringVar(&username, "username", "", "Display name (defaults to the token's claims)")
	return cmd
}

func runLogin(token, username string) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig(projectFile)
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg.Session.DSN)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if identity, err := client.ReadIdentity(token); err == nil {
		if identity.Expired(time.Now()) {
			return fmt.Errorf("token expired at %s", identity.ExpiresAt.Format(time.RFC3339))
		}
		if username == "" {
			username = identity.DisplayName()
		}
	}

	if err := db.SaveCredential(ctx, store.Credential{Token: token, Username: username}); err != nil {
		return err
	}

	if username != "" {
		fmt.Fprintf(os.Stdout, "Logged in as %s.\n", username)
	} else {
		fmt.Fprintln(os.Stdout, "Logged in.")
	}
	return nil
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.LoadProjectConfig(projectFile)
			if err != nil {
				return err
			}

			db, err := openStore(ctx, cfg.Session.DSN)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			if err := db.ClearCredential(ctx); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Logged out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who API requests are sent as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.LoadProjectConfig(projectFile)
			if err != nil {
				return err
			}

			db, err := openStore(ctx, cfg.Session.DSN)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			user, err := currentUser(ctx, cfg, db)
			if err != nil {
				return err
			}
			if user == "" {
				fmt.Fprintln(os.Stdout, "Not logged in.")
				return nil
			}
			fmt.Fprintln(os.Stdout, user)
			return nil
		},
	}
}
