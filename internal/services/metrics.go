/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "fmt"
    "sort"
    "strings"

    "github.com/mvidal/orgpulse/internal/config"
    "github.com/mvidal/orgpulse/internal/domain"
)

func titleCase(s string) string {
    if s == "" { return s }
    return strings.ToUpper(s[:1]) + s[1:]
}

const otherBucket = "Other"

// reportMetrics holds the per-repository counts and the rollup buckets for
// one run. Buckets are repository names, or component names when grouping
// by component is on.
type reportMetrics struct {
    ByRepo   map[string]*domain.TypeCounts
    ByBucket map[string]*domain.TypeCounts
}

// computeMetrics counts issues per type for every repository and rolls the
// counts up into buckets. Repositories without a product mapping land in
// the "Other" bucket when component grouping is requested.
func computeMetrics(allRepos map[string]map[string][]domain.Issue, repoProduct map[string]RepoProduct, groupByComponent bool) reportMetrics {
    m := reportMetrics{ByRepo: map[string]*domain.TypeCounts{}, ByBucket: map[string]*domain.TypeCounts{}}
    for repoName, byType := range allRepos {
        counts := domain.NewTypeCounts()
        for issueType, issues := range byType {
            counts.Add(issueType, len(issues))
        }
        m.ByRepo[repoName] = counts

        bucket := repoName
        if groupByComponent {
            bucket = otherBucket
            if p, ok := repoProduct[repoName]; ok { bucket = p.Name }
        }
        if m.ByBucket[bucket] == nil { m.ByBucket[bucket] = domain.NewTypeCounts() }
        for issueType, n := range counts.ByType {
            m.ByBucket[bucket].Add(issueType, n)
        }
    }
    return m
}

// GrandTotal sums every per-repository total. The bucket rollup must agree
// with it in both grouping modes.
func (m reportMetrics) GrandTotal() int {
    total := 0
    for _, c := range m.ByRepo { total += c.Total }
    return total
}

var metricsTypeOrder = []string{domain.TypeBug, domain.TypeEnhancement, domain.TypeRequirement, domain.TypeTask, domain.TypeTheme}

func metricsColumns(keyLabel string) []string {
    cols := []string{keyLabel}
    for _, t := range metricsTypeOrder { cols = append(cols, titleCase(t)) }
    return append(cols, "Total")
}

// metricsRows emits one row per bucket in sorted key order plus a bold
// grand total row.
func metricsRows(buckets map[string]*domain.TypeCounts) [][]string {
    keys := make([]string, 0, len(buckets))
    for k := range buckets { keys = append(keys, k) }
    sort.Strings(keys)

    grand := domain.NewTypeCounts()
    var rows [][]string
    for _, k := range keys {
        c := buckets[k]
        row := []string{k}
        for _, t := range metricsTypeOrder {
            row = append(row, fmt.Sprintf("%d", c.ByType[t]))
            grand.Add(t, c.ByType[t])
        }
        rows = append(rows, append(row, fmt.Sprintf("%d", c.Total)))
    }

    totalRow := []string{"**TOTAL**"}
    for _, t := range metricsTypeOrder {
        totalRow = append(totalRow, fmt.Sprintf("**%d**", grand.ByType[t]))
    }
    rows = append(rows, append(totalRow, fmt.Sprintf("**%d**", grand.Total)))
    return rows
}

// metricDescription explains what the summary counts, matching the state
// filter the run used.
func metricDescription(state, startTime, endTime string) string {
    switch state {
    case config.StateFilterClosed:
        start, end := "start", "end"
        if startTime != "" { start = dateOnly(startTime) }
        if endTime != "" { end = dateOnly(endTime) }
        return fmt.Sprintf("Issues closed between %s and %s", start, end)
    case config.StateFilterOpen:
        return "Open issues updated in the specified period"
    default:
        return "All issues in the specified period"
    }
}

// metricsSection appends the summary metrics block at the end of a report.
func metricsSection(doc Doc, m reportMetrics, state, startTime, endTime string, groupByComponent bool) {
    doc.Header(1, "Summary Metrics")
    doc.Line(metricDescription(state, startTime, endTime))
    doc.Line("")

    if groupByComponent {
        doc.Header(2, "By Component")
        doc.Table(metricsColumns("Component"), metricsRows(m.ByBucket))
        return
    }
    doc.Table(metricsColumns("Repository"), metricsRows(m.ByBucket))
}
