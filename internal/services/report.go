/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "fmt"

    "github.com/mvidal/orgpulse/internal/domain"
)

// Doc is the emission target for report sections. Both the markdown and the
// csv writers satisfy it.
type Doc interface {
    Header(level int, title string)
    Line(text string)
    Table(columns []string, rows [][]string)
}

var planningColumns = []string{"Issue", "Type", "Priority / Bug Severity", "Status", "On Deck"}
var knownBugsColumns = []string{"Issue", "Severity", "Status"}

const statusInProgress = "in progress"

func issueCell(repoName string, is domain.Issue, child bool) string {
    cell := fmt.Sprintf("[%s#%d](%s) - %s", repoName, is.Number, is.URL, is.Title)
    if child { cell = "  ↳ " + cell }
    return cell
}

func onDeck(is domain.Issue) string {
    if domain.IsTopPriority(domain.PriorityOf(is)) { return "X" }
    return ""
}

func planningRow(repoName string, is domain.Issue, status string, child bool) []string {
    return []string{issueCell(repoName, is, child), domain.IssueTypeOf(is), domain.PriorityOf(is), status, onDeck(is)}
}

func findIssue(issues []domain.Issue, number int) (domain.Issue, bool) {
    for _, is := range issues {
        if is.Number == number { return is, true }
    }
    return domain.Issue{}, false
}

// knownBugsRows builds the flat bug table. The hierarchy must have been
// resolved over the bug subset alone so that a cross-type parent does not
// swallow a bug into the child set.
func knownBugsRows(repoName string, bugs []domain.Issue, h domain.Hierarchy) [][]string {
    var rows [][]string
    for _, is := range bugs {
        if h.IsChild(is.Number) { continue }
        rows = append(rows, []string{issueCell(repoName, is, false), domain.PriorityOf(is), is.State})
        for _, childNum := range h.Children[is.Number] {
            child, ok := findIssue(bugs, childNum)
            if !ok { continue }
            rows = append(rows, []string{issueCell(repoName, child, true), domain.PriorityOf(child), child.State})
        }
    }
    return rows
}

// combineIssues flattens a type-grouped map into one list, walking the types
// in their fixed precedence order so output is stable run to run.
func combineIssues(byType map[string][]domain.Issue) []domain.Issue {
    var all []domain.Issue
    for _, t := range domain.IssueTypes {
        all = append(all, byType[t]...)
    }
    return all
}

// inProgressParents returns the numbers of open parents that have at least
// one closed child in the list. Those parents display as "in progress" even
// though their tracker state is still open.
func inProgressParents(all []domain.Issue, h domain.Hierarchy) map[int]struct{} {
    out := map[int]struct{}{}
    for _, is := range all {
        if is.State != domain.StateOpen { continue }
        children, ok := h.Children[is.Number]
        if !ok { continue }
        for _, childNum := range children {
            if child, found := findIssue(all, childNum); found && child.State == domain.StateClosed {
                out[is.Number] = struct{}{}
                break
            }
        }
    }
    return out
}

// planningParentRows emits the "Parent Issues" table rows in two passes.
// In-progress parents come first with only their closed children nested;
// the second pass walks the remaining parents with all of their children,
// and picks up the still-open children of parents the first pass already
// printed, so no issue is dropped and none appears twice.
func planningParentRows(repoName string, all []domain.Issue, h domain.Hierarchy) [][]string {
    inProgress := inProgressParents(all, h)

    var rows [][]string
    for _, is := range all {
        if _, ok := inProgress[is.Number]; !ok { continue }
        if h.IsChild(is.Number) { continue }
        rows = append(rows, planningRow(repoName, is, statusInProgress, false))
        for _, childNum := range h.Children[is.Number] {
            child, found := findIssue(all, childNum)
            if !found || child.State != domain.StateClosed { continue }
            rows = append(rows, planningRow(repoName, child, child.State, true))
        }
    }

    for _, is := range all {
        if !h.IsParent(is.Number) { continue }
        _, shown := inProgress[is.Number]
        if !shown {
            rows = append(rows, planningRow(repoName, is, is.State, false))
        }
        for _, childNum := range h.Children[is.Number] {
            child, found := findIssue(all, childNum)
            if !found { continue }
            if shown && child.State == domain.StateClosed { continue }
            rows = append(rows, planningRow(repoName, child, child.State, true))
        }
    }
    return rows
}

// planningStandaloneRows lists issues that are neither parents nor children.
func planningStandaloneRows(repoName string, all []domain.Issue, h domain.Hierarchy) [][]string {
    var rows [][]string
    for _, is := range all {
        if h.IsParent(is.Number) || h.IsChild(is.Number) { continue }
        rows = append(rows, planningRow(repoName, is, is.State, false))
    }
    return rows
}

// knownBugsSection writes one repository's known-bugs block. Repositories
// without bugs contribute nothing.
func (s *Service) knownBugsSection(doc Doc, ctx reportContext, repoName string, byType map[string][]domain.Issue, headerOffset int) {
    bugs := byType[domain.TypeBug]
    if len(bugs) == 0 { return }

    h := domain.NewHierarchy()
    if ctx.showParentChild {
        h = s.buildParentChildMap(ctx.ctx, ctx.org, repoName, bugs, false)
    }

    doc.Header(2+headerOffset, repoName)
    doc.Line("Here is the list of the known bugs for the current release, click on them for more information and possible workarounds.")
    doc.Line("")
    doc.Table(knownBugsColumns, knownBugsRows(repoName, bugs, h))
}

// planningSection writes one repository's planning block with the parent
// and standalone tables.
func (s *Service) planningSection(doc Doc, ctx reportContext, repoName string, byType map[string][]domain.Issue, headerOffset int) {
    all := combineIssues(byType)
    if len(all) == 0 { return }

    h := domain.NewHierarchy()
    if ctx.showParentChild {
        h = s.buildParentChildMap(ctx.ctx, ctx.org, repoName, all, false)
    }

    doc.Header(2+headerOffset, repoName)

    parentRows := planningParentRows(repoName, all, h)
    if len(parentRows) > 0 {
        doc.Header(3+headerOffset, "Parent Issues")
        doc.Table(planningColumns, parentRows)
    }

    otherRows := planningStandaloneRows(repoName, all, h)
    if len(otherRows) > 0 {
        doc.Header(3+headerOffset, "Other Issues")
        doc.Table(planningColumns, otherRows)
    }
}
