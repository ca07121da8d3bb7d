package openai

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "strings"

    openai "github.com/openai/openai-go/v2"
    "github.com/openai/openai-go/v2/option"
    "github.com/openai/openai-go/v2/shared"
    "github.com/mvidal/orgpulse/internal/config"
    "github.com/mvidal/orgpulse/internal/domain"
    "github.com/rs/zerolog"
)

type Client struct {
    key   string
    model string
    cli   openai.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    model := cfg.OpenAIModel
    if strings.TrimSpace(model) == "" { model = "gpt-4.1-mini" }
    cli := openai.NewClient(option.WithAPIKey(cfg.OpenAIKey))
    return &Client{ key: cfg.OpenAIKey, model: model, cli: cli, log: log }
}

// Summarize turns the metrics rollup into a short executive note for the
// digest. Only aggregate counts leave the process, never issue content.
func (c *Client) Summarize(ctx context.Context, metrics map[string]*domain.TypeCounts) (string, error) {
    if strings.TrimSpace(c.key) == "" { return "", errors.New("openai: missing key") }
    b := &strings.Builder{}
    keys := make([]string, 0, len(metrics))
    for k := range metrics { keys = append(keys, k) }
    sort.Strings(keys)
    for _, k := range keys {
        m := metrics[k]
        fmt.Fprintf(b, "%s: total=%d", k, m.Total)
        for _, t := range domain.IssueTypes {
            if n := m.ByType[t]; n > 0 { fmt.Fprintf(b, " %s=%d", t, n) }
        }
        b.WriteString("\n")
    }
    params := openai.ChatCompletionNewParams{
        Model: shared.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage("You are a release manager. Given per-bucket issue counts for an organization, write a 3-sentence summary of where the work is concentrated and anything unusual. Plain text only."),
            openai.UserMessage(b.String()),
        },
    }
    resp, err := c.cli.Chat.Completions.New(ctx, params)
    if err != nil { return "", err }
    if len(resp.Choices) == 0 { return "", errors.New("openai: no choices") }
    return resp.Choices[0].Message.Content, nil
}
