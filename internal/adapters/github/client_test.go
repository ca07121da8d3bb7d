package github

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/mvidal/orgpulse/internal/config"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
    t.Helper()
    srv := httptest.NewServer(handler)
    t.Cleanup(srv.Close)
    cfg := config.Config{GitHubBaseURL: srv.URL, GitHubToken: "test-token", HTTPTimeout: 5 * time.Second}
    return NewClient(cfg, zerolog.Nop())
}

func issueJSON(number int, repo, state string, labels ...string) map[string]any {
    ls := make([]map[string]string, 0, len(labels))
    for _, l := range labels { ls = append(ls, map[string]string{"name": l}) }
    return map[string]any{
        "number":   number,
        "title":    fmt.Sprintf("issue %d", number),
        "html_url": fmt.Sprintf("https://github.test/my-org/%s/issues/%d", repo, number),
        "state":    state,
        "labels":   ls,
    }
}

func TestSearchIssues(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/search/issues", r.URL.Path)
        assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
        assert.Equal(t, "org:my-org label:bug is:issue", r.URL.Query().Get("q"))

        pr := issueJSON(3, "repo-a", "open", "bug")
        pr["pull_request"] = map[string]string{"url": "https://github.test/pr"}
        _ = json.NewEncoder(w).Encode(map[string]any{
            "total_count": 3,
            "items": []any{
                issueJSON(1, "repo-a", "open", "bug", "s.high"),
                issueJSON(2, "repo-b", "closed", "bug"),
                pr,
            },
        })
    }))

    issues, total, err := c.SearchIssues(context.Background(), "org:my-org label:bug is:issue", 1, 100)
    require.NoError(t, err)
    assert.Equal(t, 3, total)
    require.Len(t, issues, 2, "pull requests are dropped")

    assert.Equal(t, 1, issues[0].Number)
    assert.Equal(t, "repo-a", issues[0].Repo)
    assert.Equal(t, []string{"bug", "s.high"}, issues[0].Labels)
    assert.Equal(t, "repo-b", issues[1].Repo)
}

func TestSubIssues_NotFoundIsEmpty(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
    }))
    assert.Nil(t, c.SubIssues(context.Background(), "my-org", "repo-a", 7))
}

func TestSubIssues(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/repos/my-org/repo-a/issues/7/sub_issues", r.URL.Path)
        _ = json.NewEncoder(w).Encode([]any{issueJSON(8, "repo-a", "open"), issueJSON(9, "repo-a", "closed")})
    }))
    subs := c.SubIssues(context.Background(), "my-org", "repo-a", 7)
    require.Len(t, subs, 2)
    assert.Equal(t, 8, subs[0].Number)
    assert.Equal(t, "closed", subs[1].State)
}

func TestParentIssue(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/repos/my-org/repo-a/issues/8/parent", r.URL.Path)
        _ = json.NewEncoder(w).Encode(issueJSON(7, "repo-a", "open", "theme"))
    }))
    p := c.ParentIssue(context.Background(), "my-org", "repo-a", 8)
    require.NotNil(t, p)
    assert.Equal(t, 7, p.Number)
    assert.Equal(t, "open", p.State)
}

func TestParentIssue_AbsenceAndFailureAreNil(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "not found", http.StatusNotFound)
    }))
    assert.Nil(t, c.ParentIssue(context.Background(), "my-org", "repo-a", 8))

    bad := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "forbidden", http.StatusForbidden)
    }))
    assert.Nil(t, bad.ParentIssue(context.Background(), "my-org", "repo-a", 8))
}

func TestListRepoIssues_Paginates(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, "/repos/my-org/repo-a/issues", r.URL.Path)
        assert.Equal(t, "open", r.URL.Query().Get("state"))
        assert.Equal(t, "bug", r.URL.Query().Get("labels"))

        page := r.URL.Query().Get("page")
        if page == "1" {
            items := make([]any, 0, 100)
            for i := 1; i <= 100; i++ { items = append(items, issueJSON(i, "repo-a", "open", "bug")) }
            _ = json.NewEncoder(w).Encode(items)
            return
        }
        _ = json.NewEncoder(w).Encode([]any{issueJSON(101, "repo-a", "open", "bug")})
    }))

    issues, err := c.ListRepoIssues(context.Background(), "my-org", "repo-a", "open", "bug")
    require.NoError(t, err)
    assert.Len(t, issues, 101)
}

func TestCreateIssue(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.Equal(t, http.MethodPost, r.Method)
        require.Equal(t, "/repos/my-org/repo-a/issues", r.URL.Path)
        var payload struct {
            Title  string   `json:"title"`
            Labels []string `json:"labels"`
        }
        require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
        assert.Equal(t, "B17 Search performance", payload.Title)
        assert.Contains(t, payload.Labels, "theme")
        _ = json.NewEncoder(w).Encode(issueJSON(42, "repo-a", "open"))
    }))

    url, err := c.CreateIssue(context.Background(), "my-org", "repo-a", "B17 Search performance", "body", []string{"theme", "B17"})
    require.NoError(t, err)
    assert.Contains(t, url, "/issues/42")
}

func TestEnsureLabel_ExistingIsNoop(t *testing.T) {
    var created bool
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodGet {
            _ = json.NewEncoder(w).Encode(map[string]string{"name": "B17"})
            return
        }
        created = true
    }))
    require.NoError(t, c.EnsureLabel(context.Background(), "my-org", "repo-a", "B17", ""))
    assert.False(t, created)
}

func TestEnsureLabel_CreatesMissing(t *testing.T) {
    var createBody map[string]any
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodGet {
            http.Error(w, "not found", http.StatusNotFound)
            return
        }
        require.Equal(t, "/repos/my-org/repo-a/labels", r.URL.Path)
        require.NoError(t, json.NewDecoder(r.Body).Decode(&createBody))
        w.WriteHeader(http.StatusCreated)
    }))
    require.NoError(t, c.EnsureLabel(context.Background(), "my-org", "repo-a", "B17", ""))
    assert.Equal(t, "B17", createBody["name"])
    assert.Equal(t, "0366d6", createBody["color"])
}

func TestIssueJSONRepoName(t *testing.T) {
    i := IssueJSON{HTMLURL: "https://github.test/my-org/registry-api/issues/12"}
    assert.Equal(t, "registry-api", i.RepoName())
    assert.Equal(t, "", IssueJSON{HTMLURL: "bad"}.RepoName())
}
