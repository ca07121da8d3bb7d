/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"

    "github.com/mvidal/orgpulse/internal/domain"
)

// subIssueFetcher returns the sub-issues of one issue number, empty on
// absence or failure.
type subIssueFetcher func(number int) []domain.SubIssueRef

// parentFetcher returns the parent of one issue number, nil on absence or
// failure.
type parentFetcher func(number int) *domain.FetchedParent

// resolveHierarchy reconciles the tracker's two hierarchy endpoints into one
// parent->children relation over a single repository's issue list.
//
// The two passes are asymmetric on purpose: the sub-issue list and the
// parent lookup are independent endpoints that can disagree, and the forward
// pass wins. Pass 1 links only sub-issues already present in the input list;
// references outside it are dropped, not fetched. Pass 2 runs only when
// includeExternalParents is set, skips every issue pass 1 already proved a
// parent, and records a parent only when its number is absent from the input
// list. An in-list parent is pass 1's responsibility; a disagreement between
// the endpoints is left standing rather than patched here.
func resolveHierarchy(issues []domain.Issue, fetchSub subIssueFetcher, fetchParent parentFetcher, includeExternalParents bool) domain.Hierarchy {
    h := domain.NewHierarchy()

    index := make(map[int]struct{}, len(issues))
    for _, is := range issues { index[is.Number] = struct{}{} }

    // pass 1: forward, via the native sub-issue list
    for _, is := range issues {
        subs := fetchSub(is.Number)
        if len(subs) == 0 { continue }
        var children []int
        for _, sub := range subs {
            if sub.Number == 0 || sub.Number == is.Number { continue }
            if _, ok := index[sub.Number]; !ok { continue }
            children = append(children, sub.Number)
            h.ChildSet[sub.Number] = struct{}{}
        }
        if len(children) > 0 { h.Children[is.Number] = children }
    }

    if !includeExternalParents { return h }

    // pass 2: backward, via the parent lookup, for issues pass 1 did not
    // already establish as parents
    for _, is := range issues {
        if h.IsParent(is.Number) { continue }
        parent := fetchParent(is.Number)
        if parent == nil || parent.Number == 0 { continue }
        if _, inList := index[parent.Number]; inList { continue }
        h.FetchedParents[parent.Number] = *parent
        h.ChildSet[is.Number] = struct{}{}
        h.Children[parent.Number] = append(h.Children[parent.Number], is.Number)
    }

    return h
}

// buildParentChildMap binds resolveHierarchy to the tracker adapter for one
// repository. Fetch failures inside the adapter degrade to absence, so a
// single broken issue never aborts the pass.
func (s *Service) buildParentChildMap(ctx context.Context, org, repoName string, issues []domain.Issue, includeExternalParents bool) domain.Hierarchy {
    fetchSub := func(number int) []domain.SubIssueRef {
        return s.gh.SubIssues(ctx, org, repoName, number)
    }
    fetchParent := func(number int) *domain.FetchedParent {
        return s.gh.ParentIssue(ctx, org, repoName, number)
    }
    return resolveHierarchy(issues, fetchSub, fetchParent, includeExternalParents)
}
