/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package telegram

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"

    "github.com/mvidal/orgpulse/internal/config"
    "github.com/rs/zerolog"
)

type Client struct {
    token string
    http  *http.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{ token: cfg.TelegramToken, http: &http.Client{ Timeout: 10 * time.Second }, log: log }
}

func (c *Client) call(ctx context.Context, method string, body map[string]any) error {
    if c.token == "" { return fmt.Errorf("telegram: missing token") }
    url := fmt.Sprintf("https://api.telegram.org/bot%s/%s", c.token, method)
    b, _ := json.Marshal(body)
    req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
    req.Header.Set("Content-Type", "application/json")
    resp, err := c.http.Do(req)
    if err != nil { return err }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        bodyBytes, _ := io.ReadAll(resp.Body)
        return fmt.Errorf("telegram %s status=%d body=%s", method, resp.StatusCode, string(bodyBytes))
    }
    return nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
    if chatID == 0 { return fmt.Errorf("telegram: missing chat id") }
    return c.call(ctx, "sendMessage", map[string]any{
        "chat_id": chatID, "text": text, "parse_mode": "Markdown", "disable_web_page_preview": true,
    })
}

// SendMessagePlain sends without parse_mode to avoid markdown parsing errors
func (c *Client) SendMessagePlain(ctx context.Context, chatID int64, text string) error {
    if chatID == 0 { return fmt.Errorf("telegram: missing chat id") }
    return c.call(ctx, "sendMessage", map[string]any{
        "chat_id": chatID, "text": text, "disable_web_page_preview": true,
    })
}

// SetWebhook registers the webhook URL and secret with Telegram
func (c *Client) SetWebhook(ctx context.Context, webhookURL string, secretToken string) error {
    if webhookURL == "" || secretToken == "" { return fmt.Errorf("telegram: missing url or secret") }
    return c.call(ctx, "setWebhook", map[string]any{
        "url": webhookURL,
        "secret_token": secretToken,
        "drop_pending_updates": true,
        "allowed_updates": []string{"message"},
    })
}
