/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package github

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/mvidal/orgpulse/internal/config"
    "github.com/mvidal/orgpulse/internal/domain"
    "github.com/rs/zerolog"
)

type Client struct {
    baseURL string
    token   string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: cfg.GitHubBaseURL,
        token:   cfg.GitHubToken,
        http:    &http.Client{ Timeout: cfg.HTTPTimeout },
        log:     log,
    }
}

// IssueJSON mirrors the fields of the REST issue payload the reports need.
type IssueJSON struct {
    Number    int    `json:"number"`
    Title     string `json:"title"`
    HTMLURL   string `json:"html_url"`
    State     string `json:"state"`
    Labels    []struct {
        Name string `json:"name"`
    } `json:"labels"`
    ClosedAt    *time.Time `json:"closed_at"`
    UpdatedAt   *time.Time `json:"updated_at"`
    PullRequest *struct {
        URL string `json:"url"`
    } `json:"pull_request"`
}

// IsPullRequest reports whether the search item is a PR surfaced by the
// issues search endpoint.
func (i IssueJSON) IsPullRequest() bool { return i.PullRequest != nil }

// RepoName extracts the repository name from the canonical issue URL
// (…/<owner>/<repo>/issues/<n>), the only reliable place search results
// carry it.
func (i IssueJSON) RepoName() string {
    parts := strings.Split(i.HTMLURL, "/")
    if len(parts) < 3 { return "" }
    return parts[len(parts)-3]
}

// ToIssue converts the wire payload into the domain projection.
func (i IssueJSON) ToIssue() domain.Issue {
    labels := make([]string, 0, len(i.Labels))
    for _, l := range i.Labels { labels = append(labels, l.Name) }
    return domain.Issue{
        Number:    i.Number,
        Title:     i.Title,
        URL:       i.HTMLURL,
        Repo:      i.RepoName(),
        State:     i.State,
        Labels:    labels,
        ClosedAt:  i.ClosedAt,
        UpdatedAt: i.UpdatedAt,
    }
}

type searchResult struct {
    TotalCount int         `json:"total_count"`
    Items      []IssueJSON `json:"items"`
}

func (c *Client) apiURL(path string, q url.Values) string {
    base := strings.TrimRight(c.baseURL, "/")
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := base + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

// doJSON performs one API call with bearer auth and decodes the body into
// out. Retries on 429/5xx with exponential backoff.
func (c *Client) doJSON(ctx context.Context, method, u string, body any, out any) error {
    if c.baseURL == "" { return errors.New("github: empty baseURL") }
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return err }
        payload = b
    }
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        var r io.Reader
        if payload != nil { r = strings.NewReader(string(payload)) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return err }
        req.Header.Set("Accept", "application/vnd.github+json")
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        if c.token != "" { req.Header.Set("Authorization", "Bearer "+c.token) }
        resp, err := c.http.Do(req)
        if err != nil { lastErr = err } else {
            b, rerr := io.ReadAll(resp.Body)
            resp.Body.Close()
            if rerr != nil { return rerr }
            if resp.StatusCode >= 300 {
                apiErr := fmt.Errorf("github api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                // retry on 429/5xx
                if resp.StatusCode == 429 || resp.StatusCode >= 500 {
                    lastErr = apiErr
                } else {
                    return apiErr
                }
            } else {
                if out != nil { return json.Unmarshal(b, out) }
                return nil
            }
        }
        time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
    }
    return lastErr
}

// SearchIssues runs one page of the issues search endpoint. Pull requests
// surfaced by the search index are dropped before conversion.
func (c *Client) SearchIssues(ctx context.Context, query string, page, perPage int) ([]domain.Issue, int, error) {
    if query == "" { return nil, 0, errors.New("github: empty query") }
    q := url.Values{}
    q.Set("q", query)
    if page > 0 { q.Set("page", strconv.Itoa(page)) }
    if perPage > 0 { q.Set("per_page", strconv.Itoa(perPage)) }
    q.Set("sort", "created")
    q.Set("order", "asc")
    var res searchResult
    if err := c.doJSON(ctx, http.MethodGet, c.apiURL("/search/issues", q), nil, &res); err != nil {
        return nil, 0, err
    }
    out := make([]domain.Issue, 0, len(res.Items))
    for _, it := range res.Items {
        if it.IsPullRequest() { continue }
        out = append(out, it.ToIssue())
    }
    return out, res.TotalCount, nil
}

// SubIssues lists the native sub-issues of one issue. A 404 means the issue
// has none and is not an error; any other failure is logged and degrades to
// an empty list so one bad issue cannot abort a resolution pass.
func (c *Client) SubIssues(ctx context.Context, owner, repo string, number int) []domain.SubIssueRef {
    path := fmt.Sprintf("/repos/%s/%s/issues/%d/sub_issues", owner, repo, number)
    var items []IssueJSON
    if err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, nil), nil, &items); err != nil {
        if isNotFound(err) {
            c.log.Debug().Str("repo", repo).Int("issue", number).Msg("no sub-issues")
        } else {
            c.log.Warn().Err(err).Str("repo", repo).Int("issue", number).Msg("sub-issues fetch failed")
        }
        return nil
    }
    out := make([]domain.SubIssueRef, 0, len(items))
    for _, it := range items {
        out = append(out, domain.SubIssueRef{Number: it.Number, Title: it.Title, URL: it.HTMLURL, State: it.State})
    }
    return out
}

// ParentIssue returns the native parent of one issue, or nil when the issue
// has no parent (404) or the lookup fails; failures are logged only.
func (c *Client) ParentIssue(ctx context.Context, owner, repo string, number int) *domain.FetchedParent {
    path := fmt.Sprintf("/repos/%s/%s/issues/%d/parent", owner, repo, number)
    var item IssueJSON
    if err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, nil), nil, &item); err != nil {
        if isNotFound(err) {
            c.log.Debug().Str("repo", repo).Int("issue", number).Msg("no parent issue")
        } else {
            c.log.Warn().Err(err).Str("repo", repo).Int("issue", number).Msg("parent fetch failed")
        }
        return nil
    }
    if item.Number == 0 { return nil }
    return &domain.FetchedParent{Number: item.Number, Title: item.Title, URL: item.HTMLURL, State: item.State}
}

// ListRepoIssues lists issues of one repository filtered by state and label.
func (c *Client) ListRepoIssues(ctx context.Context, owner, repo, state, label string) ([]domain.Issue, error) {
    var all []domain.Issue
    page := 1
    for {
        q := url.Values{}
        if state != "" { q.Set("state", state) }
        if label != "" { q.Set("labels", label) }
        q.Set("per_page", "100")
        q.Set("page", strconv.Itoa(page))
        path := fmt.Sprintf("/repos/%s/%s/issues", owner, repo)
        var items []IssueJSON
        if err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, q), nil, &items); err != nil { return all, err }
        if len(items) == 0 { break }
        for _, it := range items {
            if it.IsPullRequest() { continue }
            all = append(all, it.ToIssue())
        }
        if len(items) < 100 { break }
        page++
    }
    return all, nil
}

// CreateIssue opens a new issue and returns its canonical URL.
func (c *Client) CreateIssue(ctx context.Context, owner, repo, title, body string, labels []string) (string, error) {
    path := fmt.Sprintf("/repos/%s/%s/issues", owner, repo)
    payload := map[string]any{"title": title, "body": body, "labels": labels}
    var out IssueJSON
    if err := c.doJSON(ctx, http.MethodPost, c.apiURL(path, nil), payload, &out); err != nil { return "", err }
    return out.HTMLURL, nil
}

// AddLabels appends labels to an existing issue.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
    if len(labels) == 0 { return nil }
    path := fmt.Sprintf("/repos/%s/%s/issues/%d/labels", owner, repo, number)
    payload := map[string]any{"labels": labels}
    return c.doJSON(ctx, http.MethodPost, c.apiURL(path, nil), payload, nil)
}

// EnsureLabel creates the label in the repository if it does not exist yet.
func (c *Client) EnsureLabel(ctx context.Context, owner, repo, name, color string) error {
    path := fmt.Sprintf("/repos/%s/%s/labels/%s", owner, repo, url.PathEscape(name))
    var existing struct {
        Name string `json:"name"`
    }
    if err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, nil), nil, &existing); err == nil && existing.Name != "" {
        return nil
    } else if err != nil && !isNotFound(err) {
        return err
    }
    if color == "" { color = "0366d6" }
    createPath := fmt.Sprintf("/repos/%s/%s/labels", owner, repo)
    payload := map[string]any{"name": name, "color": color}
    return c.doJSON(ctx, http.MethodPost, c.apiURL(createPath, nil), payload, nil)
}

func isNotFound(err error) bool {
    return err != nil && strings.Contains(err.Error(), "status=404")
}
