// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the BNC-Insight CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bnc-insight",
		Short: "BNC-Insight - account provisioning and authentication",
		Long: `BNC-Insight manages invitation-gated accounts: one-time signup
tokens, credential-based authentication, and the database schema
behind them.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewTokenCmd())

	return cmd
}
