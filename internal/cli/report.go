/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package cli

import (
    "context"
    "fmt"

    "github.com/mvidal/orgpulse/internal/services"
    "github.com/spf13/cobra"
)

var reportFlags struct {
    org              string
    repos            []string
    state            string
    startTime        string
    endTime          string
    kind             string
    groupByComponent bool
    showParentChild  bool
    outputDir        string
    productsFile     string
}

var reportCmd = &cobra.Command{
    Use:   "report",
    Short: "Generate a planning or known-bugs report",
    Long: `Generate a Markdown issue report for an organization, plus a CSV
metrics summary.

Examples:
  orgpulse report --github-org my-org --report planning --show-parent-child
  orgpulse report --github-org my-org --report known_bugs --issue-state open`,
    RunE: runReport,
}

func init() {
    rootCmd.AddCommand(reportCmd)

    reportCmd.Flags().StringVar(&reportFlags.org, "github-org", "", "organization to report on")
    reportCmd.Flags().StringSliceVar(&reportFlags.repos, "github-repos", nil, "restrict to these repositories (default: all)")
    reportCmd.Flags().StringVar(&reportFlags.state, "issue-state", "all", "open, closed or all")
    reportCmd.Flags().StringVar(&reportFlags.startTime, "start-time", "", "period start, ISO 8601")
    reportCmd.Flags().StringVar(&reportFlags.endTime, "end-time", "", "period end, ISO 8601")
    reportCmd.Flags().StringVar(&reportFlags.kind, "report", "planning", "planning or known_bugs")
    reportCmd.Flags().BoolVar(&reportFlags.groupByComponent, "group-by-component", false, "group repositories by product component")
    reportCmd.Flags().BoolVar(&reportFlags.showParentChild, "show-parent-child", false, "nest sub-issues under their parents")
    reportCmd.Flags().StringVar(&reportFlags.outputDir, "output-dir", ".", "directory for the generated files")
    reportCmd.Flags().StringVar(&reportFlags.productsFile, "products-file", "", "components YAML (default from PRODUCTS_FILE)")
}

func runReport(cmd *cobra.Command, args []string) error {
    cfg := loadConfig()
    if reportFlags.org != "" { cfg.GitHubOrg = reportFlags.org }
    if reportFlags.productsFile != "" { cfg.ProductsFile = reportFlags.productsFile }
    if cfg.GitHubOrg == "" { return fmt.Errorf("--github-org (or GITHUB_ORG) is required") }

    svc, _ := newService(cfg)
    res, err := svc.RunReport(context.Background(), services.ReportOptions{
        Org:              cfg.GitHubOrg,
        Repos:            reportFlags.repos,
        State:            reportFlags.state,
        StartTime:        reportFlags.startTime,
        EndTime:          reportFlags.endTime,
        Kind:             reportFlags.kind,
        GroupByComponent: reportFlags.groupByComponent,
        ShowParentChild:  reportFlags.showParentChild,
        OutputDir:        reportFlags.outputDir,
    })
    if err != nil { return err }

    fmt.Fprintf(cmd.OutOrStdout(), "report written to %s (%d issues)\n", res.MarkdownPath, res.GrandTotal)
    if res.CSVPath != "" { fmt.Fprintf(cmd.OutOrStdout(), "metrics written to %s\n", res.CSVPath) }
    return nil
}
