package services

import (
    "testing"
    "time"

    "github.com/mvidal/orgpulse/internal/config"
    "github.com/mvidal/orgpulse/internal/domain"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestBuildSearchQuery(t *testing.T) {
    q := buildSearchQuery("my-org", "bug", config.StateFilterClosed, "2026-01-01T00:00:00", "2026-02-01T00:00:00")
    assert.Equal(t, "org:my-org label:bug is:issue is:closed closed:2026-01-01..2026-02-01", q)

    q = buildSearchQuery("my-org", "task", config.StateFilterOpen, "2026-01-01", "")
    assert.Equal(t, "org:my-org label:task is:issue is:open updated:>=2026-01-01", q)

    q = buildSearchQuery("my-org", "theme", config.StateFilterAll, "", "")
    assert.Equal(t, "org:my-org label:theme is:issue", q)
}

func TestParseBoundary(t *testing.T) {
    cases := []struct {
        in   string
        want string
        ok   bool
    }{
        {"2026-02-01T12:30:00+02:00", "2026-02-01T10:30:00Z", true},
        {"2026-02-01T12:30:00", "2026-02-01T12:30:00Z", true},
        {"2026-02-01", "2026-02-01T00:00:00Z", true},
        {"", "", false},
        {"not a date", "", false},
    }
    for _, tc := range cases {
        got, ok := parseBoundary(tc.in)
        require.Equal(t, tc.ok, ok, "input %q", tc.in)
        if ok {
            assert.Equal(t, tc.want, got.Format(time.RFC3339), "input %q", tc.in)
        }
    }
}

func TestAfterBoundary(t *testing.T) {
    boundary, ok := parseBoundary("2026-02-01")
    require.True(t, ok)

    before := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
    after := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

    // closed state judges by closed_at
    closedLate := domain.Issue{State: domain.StateClosed, ClosedAt: &after, UpdatedAt: &before}
    assert.True(t, afterBoundary(closedLate, config.StateFilterClosed, boundary))

    closedEarly := domain.Issue{State: domain.StateClosed, ClosedAt: &before, UpdatedAt: &after}
    assert.False(t, afterBoundary(closedEarly, config.StateFilterClosed, boundary))

    // everything else judges by updated_at
    updatedLate := domain.Issue{State: domain.StateOpen, UpdatedAt: &after}
    assert.True(t, afterBoundary(updatedLate, config.StateFilterOpen, boundary))

    // no usable timestamp keeps the issue
    assert.False(t, afterBoundary(domain.Issue{}, config.StateFilterAll, boundary))
}

func TestDateOnly(t *testing.T) {
    assert.Equal(t, "2026-02-01", dateOnly("2026-02-01T12:30:00+02:00"))
    assert.Equal(t, "2026-02-01", dateOnly("2026-02-01"))
}
