// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package main

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/CAJA-The-Server/BNC-Insight/internal/auth"
	"github.com/CAJA-The-Server/BNC-Insight/internal/auth/postgres"
	"github.com/CAJA-The-Server/BNC-Insight/internal/config"
	"github.com/CAJA-The-Server/BNC-Insight/internal/logging"
	"github.com/CAJA-The-Server/BNC-Insight/internal/store"
)

// NewTokenCmd creates the token subcommand for out-of-band auth token
// provisioning. Signup tokens are never issued through the service
// itself; an operator mints them here and hands them out.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Provision and inspect signup tokens",
	}

	var admin bool
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Mint a new signup token and print its value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}
			logging.SetDefault("bnc-insight", version, cfg.Log.Format)

			ctx := cmd.Context()
			pool, err := store.NewPool(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			tok := &auth.AuthToken{
				Token:        ulid.Make().String(),
				IsAdminToken: admin,
				CreatedAt:    time.Now().UTC(),
			}
			repo := postgres.NewAuthTokenRepository(pool)
			if err := repo.Create(ctx, tok); err != nil {
				return err
			}
			cmd.Println(tok.Token)
			return nil
		},
	}
	newCmd.Flags().BoolVar(&admin, "admin", false, "mint an admin token")
	cmd.AddCommand(newCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "check <token>",
		Short: "Check whether a signup token is still usable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}
			logging.SetDefault("bnc-insight", version, cfg.Log.Format)

			ctx := cmd.Context()
			pool, err := store.NewPool(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}
			svc, err := auth.NewService(
				cfg.Rules(),
				postgres.NewAuthTokenRepository(pool),
				postgres.NewUserRepository(pool),
				hasher,
				postgres.NewTransactor(pool),
			)
			if err != nil {
				return err
			}

			if err := svc.VerifyAuthToken(ctx, args[0]); err != nil {
				if errors.Is(err, auth.ErrInvalidAuthToken) {
					cmd.Println("invalid")
					return nil
				}
				return err
			}
			cmd.Println("valid")
			return nil
		},
	})

	return cmd
}
