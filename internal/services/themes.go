/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "encoding/csv"
    "fmt"
    "io"
    "strings"
    "time"

    "github.com/mvidal/orgpulse/internal/domain"
)

// ThemeRow is one planned release theme from the schedule CSV.
type ThemeRow struct {
    Title     string
    Repo      string
    StartDate string
    EndDate   string
    Desc      string
    Checklist string
}

// ThemeResult summarizes one theme-creation run.
type ThemeResult struct {
    Created []string
    Skipped []string
    Failed  []string
}

const themeLabelColor = "0366d6"
const buildLabelColor = "062C9B"

// parseScheduleCSV reads the release schedule. Columns are located by
// header name so column order in the sheet export does not matter; rows
// missing a title or repository are dropped.
func parseScheduleCSV(r io.Reader) ([]ThemeRow, error) {
    cr := csv.NewReader(r)
    cr.TrimLeadingSpace = true
    header, err := cr.Read()
    if err != nil { return nil, fmt.Errorf("read schedule header: %w", err) }
    // sheet exports may carry a BOM on the first header cell
    if len(header) > 0 { header[0] = strings.TrimPrefix(header[0], "\ufeff") }
    col := map[string]int{}
    for i, h := range header { col[strings.TrimSpace(h)] = i }

    cell := func(rec []string, name string) string {
        i, ok := col[name]
        if !ok || i >= len(rec) { return "" }
        return strings.TrimSpace(rec[i])
    }

    var rows []ThemeRow
    for {
        rec, err := cr.Read()
        if err == io.EOF { break }
        if err != nil { return nil, fmt.Errorf("read schedule row: %w", err) }
        row := ThemeRow{
            Title:     cell(rec, "Title"),
            Repo:      cell(rec, "Repo"),
            StartDate: cell(rec, "Start Date"),
            EndDate:   cell(rec, "End Date"),
            Desc:      cell(rec, "Description"),
            Checklist: cell(rec, "Checklist"),
        }
        if row.Title == "" || row.Repo == "" { continue }
        rows = append(rows, row)
    }
    return rows, nil
}

// themeIssueBody renders the issue body with the description and an optional
// checklist built from semicolon-delimited items.
func themeIssueBody(description, checklist string) string {
    var b strings.Builder
    b.WriteString("## Are you sure this is not a new requirement or bug?\nYes\n\n")
    b.WriteString("## Description\n")
    b.WriteString(description + "\n")
    if strings.TrimSpace(checklist) != "" {
        b.WriteString("\n## Checklist\n")
        for _, item := range strings.Split(checklist, ";") {
            item = strings.TrimSpace(item)
            if item == "" { continue }
            b.WriteString("- [ ] " + item + "\n")
        }
    }
    return b.String()
}

func validScheduleDate(s string) bool {
    _, err := time.Parse("2006-01-02", s)
    return err == nil
}

// themeExists reports whether an issue with this exact title is already in
// the repository. A failed search is treated as absence so a transient API
// error cannot silently suppress a theme.
func (s *Service) themeExists(ctx context.Context, org, repo, title string) bool {
    query := fmt.Sprintf("repo:%s/%s is:issue in:title %q", org, repo, title)
    issues, _, err := s.gh.SearchIssues(ctx, query, 1, 100)
    if err != nil {
        s.log.Warn().Err(err).Str("repo", repo).Msg("existing theme lookup failed")
        return false
    }
    for _, is := range issues {
        if is.Title == title { return true }
    }
    return false
}

// CreateReleaseThemes creates one theme issue per schedule row under the
// B<n> build label. Rows whose title already exists in the target repository
// are skipped, and one bad row never stops the rest of the schedule.
func (s *Service) CreateReleaseThemes(ctx context.Context, org string, schedule io.Reader, buildNumber int, dryRun bool) (ThemeResult, error) {
    rows, err := parseScheduleCSV(schedule)
    if err != nil { return ThemeResult{}, err }

    buildLabel := fmt.Sprintf("B%d", buildNumber)
    var res ThemeResult
    for _, row := range rows {
        title := buildLabel + " " + row.Title
        log := s.log.With().Str("repo", row.Repo).Str("title", title).Logger()
        log.Info().Msg("processing release theme")

        if !validScheduleDate(row.StartDate) || !validScheduleDate(row.EndDate) {
            log.Error().Str("start", row.StartDate).Str("end", row.EndDate).Msg("invalid schedule dates")
            res.Failed = append(res.Failed, title)
            continue
        }
        if !dryRun && s.themeExists(ctx, org, row.Repo, title) {
            log.Info().Msg("theme already exists, skipping")
            res.Skipped = append(res.Skipped, title)
            continue
        }

        labels := []string{domain.TypeTheme, "Epic", buildLabel}
        if dryRun {
            log.Info().Strs("labels", labels).Msg("dry run, would create issue")
            res.Created = append(res.Created, title)
            continue
        }

        if err := s.gh.EnsureLabel(ctx, org, row.Repo, buildLabel, themeLabelColor); err != nil {
            log.Warn().Err(err).Msg("could not ensure build label")
        }
        url, err := s.gh.CreateIssue(ctx, org, row.Repo, title, themeIssueBody(row.Desc, row.Checklist), labels)
        if err != nil {
            log.Error().Err(err).Msg("issue creation failed")
            res.Failed = append(res.Failed, title)
            continue
        }
        log.Info().Str("url", url).Msg("created theme issue")
        res.Created = append(res.Created, title)
    }

    s.log.Info().Int("created", len(res.Created)).Int("skipped", len(res.Skipped)).Int("failed", len(res.Failed)).Msg("release theme run finished")
    return res, nil
}

// AddBuildLabelToOpenBugs tags every open bug of a repository with a stable
// version label, creating the label first when needed.
func (s *Service) AddBuildLabelToOpenBugs(ctx context.Context, org, repo, version string) (int, error) {
    if err := s.gh.EnsureLabel(ctx, org, repo, version, buildLabelColor); err != nil {
        return 0, fmt.Errorf("ensure label %q: %w", version, err)
    }
    bugs, err := s.gh.ListRepoIssues(ctx, org, repo, domain.StateOpen, domain.TypeBug)
    if err != nil { return 0, fmt.Errorf("list open bugs: %w", err) }

    labelled := 0
    for _, is := range bugs {
        if err := s.gh.AddLabels(ctx, org, repo, is.Number, []string{version}); err != nil {
            s.log.Warn().Err(err).Int("issue", is.Number).Msg("could not add version label")
            continue
        }
        labelled++
    }
    s.log.Info().Str("repo", repo).Str("version", version).Int("labelled", labelled).Msg("version label applied to open bugs")
    return labelled, nil
}
