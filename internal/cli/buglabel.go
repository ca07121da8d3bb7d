/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package cli

import (
    "context"
    "fmt"

    "github.com/spf13/cobra"
)

var bugLabelFlags struct {
    org     string
    repo    string
    version string
}

var bugLabelCmd = &cobra.Command{
    Use:   "bug-label",
    Short: "Add a version label to every open bug of a repository",
    Long: `Tag all open bug issues of one repository with a stable version
label, creating the label first when it does not exist.

Example:
  orgpulse bug-label --github-org my-org --github-repo my-repo --version v2.4.0`,
    RunE: runBugLabel,
}

func init() {
    rootCmd.AddCommand(bugLabelCmd)

    bugLabelCmd.Flags().StringVar(&bugLabelFlags.org, "github-org", "", "organization owning the repository")
    bugLabelCmd.Flags().StringVar(&bugLabelFlags.repo, "github-repo", "", "repository to label")
    bugLabelCmd.Flags().StringVar(&bugLabelFlags.version, "version", "", "stable version containing the open bugs")
    _ = bugLabelCmd.MarkFlagRequired("github-repo")
    _ = bugLabelCmd.MarkFlagRequired("version")
}

func runBugLabel(cmd *cobra.Command, args []string) error {
    cfg := loadConfig()
    if bugLabelFlags.org != "" { cfg.GitHubOrg = bugLabelFlags.org }
    if cfg.GitHubOrg == "" { return fmt.Errorf("--github-org (or GITHUB_ORG) is required") }

    svc, _ := newService(cfg)
    n, err := svc.AddBuildLabelToOpenBugs(context.Background(), cfg.GitHubOrg, bugLabelFlags.repo, bugLabelFlags.version)
    if err != nil { return err }

    fmt.Fprintf(cmd.OutOrStdout(), "labelled %d open bug(s) in %s\n", n, bugLabelFlags.repo)
    return nil
}
