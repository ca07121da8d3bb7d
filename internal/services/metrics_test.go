package services

import (
    "strconv"
    "testing"

    "github.com/mvidal/orgpulse/internal/domain"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func repoIssues(counts map[string]int) map[string][]domain.Issue {
    byType := map[string][]domain.Issue{}
    n := 1
    for issueType, c := range counts {
        for i := 0; i < c; i++ {
            byType[issueType] = append(byType[issueType], domain.Issue{Number: n, Labels: []string{issueType}})
            n++
        }
    }
    return byType
}

func TestComputeMetrics_GrandTotalInvariant(t *testing.T) {
    allRepos := map[string]map[string][]domain.Issue{
        "repo-a": repoIssues(map[string]int{domain.TypeBug: 3}),
        "repo-b": repoIssues(map[string]int{domain.TypeTask: 2}),
    }
    products := map[string]RepoProduct{"repo-a": {Name: "registry"}}

    ungrouped := computeMetrics(allRepos, nil, false)
    grouped := computeMetrics(allRepos, products, true)

    assert.Equal(t, 5, ungrouped.GrandTotal())
    assert.Equal(t, 5, grouped.GrandTotal())

    sumBuckets := func(m reportMetrics) int {
        total := 0
        for _, c := range m.ByBucket { total += c.Total }
        return total
    }
    assert.Equal(t, 5, sumBuckets(ungrouped))
    assert.Equal(t, 5, sumBuckets(grouped))
}

func TestComputeMetrics_UnmappedRepoFallsIntoOther(t *testing.T) {
    allRepos := map[string]map[string][]domain.Issue{
        "repo-a": repoIssues(map[string]int{domain.TypeBug: 1}),
        "repo-b": repoIssues(map[string]int{domain.TypeBug: 2}),
    }
    m := computeMetrics(allRepos, map[string]RepoProduct{"repo-a": {Name: "registry"}}, true)

    require.Contains(t, m.ByBucket, "registry")
    require.Contains(t, m.ByBucket, otherBucket)
    assert.Equal(t, 1, m.ByBucket["registry"].Total)
    assert.Equal(t, 2, m.ByBucket[otherBucket].Total)
}

func TestMetricsRows_SortedWithBoldTotal(t *testing.T) {
    buckets := map[string]*domain.TypeCounts{}
    add := func(name, issueType string, n int) {
        if buckets[name] == nil { buckets[name] = domain.NewTypeCounts() }
        buckets[name].Add(issueType, n)
    }
    add("zeta", domain.TypeBug, 2)
    add("alpha", domain.TypeTask, 3)

    rows := metricsRows(buckets)
    require.Len(t, rows, 3)
    assert.Equal(t, "alpha", rows[0][0])
    assert.Equal(t, "zeta", rows[1][0])
    assert.Equal(t, "**TOTAL**", rows[2][0])
    assert.Equal(t, "**"+strconv.Itoa(5)+"**", rows[2][len(rows[2])-1])

    // column layout: key, one per type, total
    require.Len(t, rows[0], len(metricsTypeOrder)+2)
    assert.Equal(t, "3", rows[0][4]) // task column for alpha
    assert.Equal(t, "2", rows[1][1]) // bug column for zeta
}

func TestMetricDescription(t *testing.T) {
    assert.Equal(t, "Issues closed between 2026-01-01 and 2026-02-01",
        metricDescription("closed", "2026-01-01T00:00:00", "2026-02-01T00:00:00"))
    assert.Equal(t, "Issues closed between start and end", metricDescription("closed", "", ""))
    assert.Equal(t, "Open issues updated in the specified period", metricDescription("open", "", ""))
    assert.Equal(t, "All issues in the specified period", metricDescription("all", "", ""))
}
