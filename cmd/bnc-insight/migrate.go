// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/CAJA-The-Server/BNC-Insight/internal/config"
	"github.com/CAJA-The-Server/BNC-Insight/internal/logging"
	"github.com/CAJA-The-Server/BNC-Insight/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "database URL (overrides config)")

	resolveURL := func() (string, error) {
		cfg, err := config.Load(configFile, nil)
		if err != nil {
			return "", err
		}
		logging.SetDefault("bnc-insight", version, cfg.Log.Format)
		if databaseURL != "" {
			return databaseURL, nil
		}
		return cfg.Database.URL, nil
	}

	withMigrator := func(fn func(m *store.Migrator) error) error {
		url, err := resolveURL()
		if err != nil {
			return err
		}
		m, err := store.NewMigrator(url)
		if err != nil {
			return err
		}
		defer m.Close() //nolint:errcheck // best effort on cleanup
		return fn(m)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *store.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *store.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("migrations rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					cmd.Println("no migrations applied")
					return nil
				}
				cmd.Printf("version: %d dirty: %t\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}
