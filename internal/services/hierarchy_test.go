package services

import (
    "testing"

    "github.com/mvidal/orgpulse/internal/domain"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func noSubs(int) []domain.SubIssueRef   { return nil }
func noParent(int) *domain.FetchedParent { return nil }

func issuesByNumber(nums ...int) []domain.Issue {
    out := make([]domain.Issue, 0, len(nums))
    for _, n := range nums { out = append(out, domain.Issue{Number: n, State: domain.StateOpen}) }
    return out
}

func TestResolveHierarchy_ForwardPass(t *testing.T) {
    subs := map[int][]domain.SubIssueRef{
        10: {{Number: 11}, {Number: 12}, {Number: 99}}, // 99 is outside the list
    }
    h := resolveHierarchy(issuesByNumber(10, 11, 12), func(n int) []domain.SubIssueRef { return subs[n] }, noParent, false)

    assert.Equal(t, []int{11, 12}, h.Children[10])
    assert.True(t, h.IsChild(11))
    assert.True(t, h.IsChild(12))
    assert.False(t, h.IsChild(99))
    assert.Empty(t, h.FetchedParents)
}

func TestResolveHierarchy_ChildSetContainment(t *testing.T) {
    subs := map[int][]domain.SubIssueRef{
        1: {{Number: 2}},
        3: {{Number: 4}, {Number: 5}},
    }
    h := resolveHierarchy(issuesByNumber(1, 2, 3, 4, 5), func(n int) []domain.SubIssueRef { return subs[n] }, noParent, true)

    for parent, children := range h.Children {
        for _, c := range children {
            assert.True(t, h.IsChild(c), "child %d of parent %d missing from child set", c, parent)
        }
    }
}

func TestResolveHierarchy_NoRelationships(t *testing.T) {
    for _, external := range []bool{false, true} {
        h := resolveHierarchy(issuesByNumber(1, 2, 3), noSubs, noParent, external)
        assert.Empty(t, h.Children)
        assert.Empty(t, h.ChildSet)
        assert.Empty(t, h.FetchedParents)
    }
}

func TestResolveHierarchy_ExternalParent(t *testing.T) {
    parent := &domain.FetchedParent{Number: 100, Title: "epic", State: domain.StateOpen}
    h := resolveHierarchy(issuesByNumber(20, 21),
        noSubs,
        func(n int) *domain.FetchedParent {
            if n == 20 { return parent }
            return nil
        },
        true)

    require.Contains(t, h.FetchedParents, 100)
    assert.Equal(t, []int{20}, h.Children[100])
    assert.True(t, h.IsChild(20))
    assert.False(t, h.IsChild(21))
}

func TestResolveHierarchy_BackwardPassSkipsExternalWhenDisabled(t *testing.T) {
    h := resolveHierarchy(issuesByNumber(20),
        noSubs,
        func(int) *domain.FetchedParent { return &domain.FetchedParent{Number: 100} },
        false)
    assert.Empty(t, h.FetchedParents)
    assert.Empty(t, h.Children)
}

func TestResolveHierarchy_BackwardPassNeverDuplicatesForwardLink(t *testing.T) {
    // 10 lists 11 as sub-issue and 11 reports 10 as parent; the forward
    // pass result must stand alone
    h := resolveHierarchy(issuesByNumber(10, 11),
        func(n int) []domain.SubIssueRef {
            if n == 10 { return []domain.SubIssueRef{{Number: 11}} }
            return nil
        },
        func(n int) *domain.FetchedParent {
            if n == 11 { return &domain.FetchedParent{Number: 10} }
            return nil
        },
        true)

    assert.Equal(t, []int{11}, h.Children[10])
    assert.Empty(t, h.FetchedParents)
}

func TestResolveHierarchy_InListParentDefersToForwardPass(t *testing.T) {
    // the parent endpoint claims 30 -> 31, the sub-issue endpoint never
    // confirmed it, and 30 is in the list: the disagreement stands
    h := resolveHierarchy(issuesByNumber(30, 31),
        noSubs,
        func(n int) *domain.FetchedParent {
            if n == 31 { return &domain.FetchedParent{Number: 30} }
            return nil
        },
        true)

    assert.Empty(t, h.Children)
    assert.False(t, h.IsChild(31))
}

func TestResolveHierarchy_SelfAndZeroReferencesDropped(t *testing.T) {
    h := resolveHierarchy(issuesByNumber(7),
        func(n int) []domain.SubIssueRef { return []domain.SubIssueRef{{Number: 7}, {Number: 0}} },
        noParent, false)
    assert.Empty(t, h.Children)
}
