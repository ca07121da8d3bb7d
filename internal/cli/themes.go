/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package cli

import (
    "context"
    "fmt"
    "os"

    "github.com/spf13/cobra"
)

var themesFlags struct {
    org         string
    csvFile     string
    buildNumber int
    dryRun      bool
}

var themesCmd = &cobra.Command{
    Use:   "themes",
    Short: "Create release theme issues from a CSV schedule",
    Long: `Read a release schedule CSV and create one theme issue per row in
its target repository, labelled with the build (for example B17). Rows whose
issue already exists are skipped.

Example:
  orgpulse themes --github-org my-org --csv-file schedule.csv --build-number 17`,
    RunE: runThemes,
}

func init() {
    rootCmd.AddCommand(themesCmd)

    themesCmd.Flags().StringVar(&themesFlags.org, "github-org", "", "organization owning the repositories")
    themesCmd.Flags().StringVar(&themesFlags.csvFile, "csv-file", "", "release schedule CSV path")
    themesCmd.Flags().IntVar(&themesFlags.buildNumber, "build-number", 0, "build number, for example 17 for B17")
    themesCmd.Flags().BoolVar(&themesFlags.dryRun, "dry-run", false, "log what would be created without creating")
    _ = themesCmd.MarkFlagRequired("csv-file")
    _ = themesCmd.MarkFlagRequired("build-number")
}

func runThemes(cmd *cobra.Command, args []string) error {
    cfg := loadConfig()
    if themesFlags.org != "" { cfg.GitHubOrg = themesFlags.org }
    if cfg.GitHubOrg == "" { return fmt.Errorf("--github-org (or GITHUB_ORG) is required") }

    f, err := os.Open(themesFlags.csvFile)
    if err != nil { return fmt.Errorf("open schedule: %w", err) }
    defer f.Close()

    svc, _ := newService(cfg)
    res, err := svc.CreateReleaseThemes(context.Background(), cfg.GitHubOrg, f, themesFlags.buildNumber, themesFlags.dryRun)
    if err != nil { return err }

    fmt.Fprintf(cmd.OutOrStdout(), "%d created, %d skipped, %d failed\n", len(res.Created), len(res.Skipped), len(res.Failed))
    if len(res.Failed) > 0 { return fmt.Errorf("%d theme(s) failed", len(res.Failed)) }
    return nil
}
