/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/mvidal/orgpulse/internal/config"
    "github.com/mvidal/orgpulse/internal/domain"
)

const searchPageSize = 100

// buildSearchQuery assembles one org-level issue search query for a type
// label. Date filters use the tracker's search syntax at day granularity;
// the precise end-time cutoff is applied locally in fetchOrgIssues.
func buildSearchQuery(org, issueType, state, startTime, endTime string) string {
    parts := []string{"org:" + org, "label:" + issueType, "is:issue"}
    if state != config.StateFilterAll { parts = append(parts, "is:"+state) }
    if state == config.StateFilterClosed && startTime != "" && endTime != "" {
        parts = append(parts, fmt.Sprintf("closed:%s..%s", dateOnly(startTime), dateOnly(endTime)))
    } else if startTime != "" {
        parts = append(parts, "updated:>="+dateOnly(startTime))
    }
    return strings.Join(parts, " ")
}

func dateOnly(ts string) string {
    if i := strings.Index(ts, "T"); i > 0 { return ts[:i] }
    return ts
}

// parseBoundary parses a report time boundary. It accepts RFC 3339 with or
// without an offset, and a bare date; a naive timestamp is read as UTC so
// offset-carrying issue timestamps stay comparable.
func parseBoundary(ts string) (time.Time, bool) {
    ts = strings.TrimSpace(ts)
    if ts == "" { return time.Time{}, false }
    for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
        if t, err := time.Parse(layout, ts); err == nil { return t.UTC(), true }
    }
    return time.Time{}, false
}

// afterBoundary applies the local end-time cutoff: closed issues are judged
// by closed_at, everything else by updated_at, both normalized to UTC.
func afterBoundary(is domain.Issue, state string, boundary time.Time) bool {
    check := is.UpdatedAt
    if state == config.StateFilterClosed && is.ClosedAt != nil { check = is.ClosedAt }
    if check == nil { return false }
    return check.UTC().After(boundary)
}

// fetchOrgIssuesByTypeAndRepo searches the organization once per issue type
// and partitions the results by repository. Ignore-labelled issues are
// dropped here, before any of them can reach the reports. A failed search
// for one type is logged and skipped; the remaining types still report.
func (s *Service) fetchOrgIssuesByTypeAndRepo(ctx context.Context, org string, reposFilter []string, state, startTime, endTime string) map[string]map[string][]domain.Issue {
    wantRepo := map[string]struct{}{}
    for _, r := range reposFilter {
        r = strings.TrimSpace(r)
        if r != "" { wantRepo[r] = struct{}{} }
    }
    boundary, hasBoundary := parseBoundary(endTime)

    all := map[string]map[string][]domain.Issue{}
    for _, issueType := range domain.IssueTypes {
        query := buildSearchQuery(org, issueType, state, startTime, endTime)
        s.log.Debug().Str("query", query).Msg("searching issues")
        page := 1
        for {
            issues, _, err := s.gh.SearchIssues(ctx, query, page, searchPageSize)
            if err != nil {
                s.log.Error().Err(err).Str("query", query).Msg("issue search failed")
                break
            }
            for _, is := range issues {
                if is.Repo == "" {
                    s.log.Warn().Int("issue", is.Number).Msg("could not determine repository for issue")
                    continue
                }
                if len(wantRepo) > 0 {
                    if _, ok := wantRepo[is.Repo]; !ok { continue }
                }
                if domain.Ignored(is) { continue }
                if hasBoundary && afterBoundary(is, state, boundary) { continue }
                if all[is.Repo] == nil {
                    byType := map[string][]domain.Issue{}
                    for _, t := range domain.IssueTypes { byType[t] = nil }
                    all[is.Repo] = byType
                }
                all[is.Repo][issueType] = append(all[is.Repo][issueType], is)
            }
            if len(issues) < searchPageSize { break }
            page++
        }
    }
    return all
}
