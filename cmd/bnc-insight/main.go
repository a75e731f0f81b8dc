// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

// Package main is the entry point for the BNC-Insight CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/CAJA-The-Server/BNC-Insight/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		errutil.LogError(slog.Default(), "command failed", err)
		return 1
	}
	return 0
}
