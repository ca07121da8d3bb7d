/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */

// Package cli implements the one-shot command line surface. It drives the
// same services as the long-running api binary, without the database, the
// scheduler or the chat integration.
package cli

import (
    "github.com/joho/godotenv"
    "github.com/mvidal/orgpulse/internal/adapters/github"
    "github.com/mvidal/orgpulse/internal/config"
    "github.com/mvidal/orgpulse/internal/logger"
    "github.com/mvidal/orgpulse/internal/services"
    "github.com/rs/zerolog"
    "github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
    Use:   "orgpulse",
    Short: "Issue hierarchy reports for a tracker organization",
    Long: `orgpulse aggregates the issues of an organization into planning and
known-bugs reports, with parent/child grouping resolved through the
tracker's sub-issue hierarchy.

Example:
  orgpulse report --github-org my-org --report planning --show-parent-child`,
    SilenceUsage: true,
}

func Execute() error {
    return rootCmd.Execute()
}

// newService builds a database-free service from the environment plus the
// flag overrides already applied to cfg.
func newService(cfg config.Config) (*services.Service, zerolog.Logger) {
    log := logger.New(cfg)
    gh := github.NewClient(cfg, log)
    return services.New(cfg, log, nil, gh, nil, nil), log
}

func loadConfig() config.Config {
    _ = godotenv.Load()
    return config.Load()
}
