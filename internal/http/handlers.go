/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "net/http"

    "github.com/gin-gonic/gin"
    "github.com/mvidal/orgpulse/internal/config"
    "github.com/mvidal/orgpulse/internal/repo"
    "github.com/rs/zerolog"
)

type service interface {
    RunScheduledReport(ctx context.Context) error
    RunReportForChat(ctx context.Context, chatID int64, kind string) error
    SendHelp(ctx context.Context, chatID int64) error
    GetLastRun(ctx context.Context) (*repo.ReportRun, error)
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.svc.GetLastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
    // detach from the request context so the run survives the response
    go func() { _ = h.svc.RunScheduledReport(context.Background()) }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *Handlers) TelegramWebhook(c *gin.Context) {
    headerSecret := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
    pathSecret := c.Param("secret")
    if headerSecret != h.cfg.TelegramWebhookSecret && pathSecret != h.cfg.TelegramWebhookSecret {
        c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
        return
    }
    h.log.Info().Str("ip", c.ClientIP()).Msg("telegram webhook received")

    var upd struct {
        Message *struct {
            Chat struct {
                ID int64 `json:"id"`
            } `json:"chat"`
            Text string `json:"text"`
        } `json:"message"`
    }
    if err := c.ShouldBindJSON(&upd); err == nil && upd.Message != nil {
        chatID := upd.Message.Chat.ID
        text := upd.Message.Text
        allowed := len(h.cfg.TelegramChatIDs) == 0
        if !allowed {
            for _, id := range h.cfg.TelegramChatIDs { if id == chatID { allowed = true; break } }
        }
        if allowed {
            switch text {
            case "/report planning":
                go func() { _ = h.svc.RunReportForChat(context.Background(), chatID, config.ReportPlanning) }()
            case "/report bugs":
                go func() { _ = h.svc.RunReportForChat(context.Background(), chatID, config.ReportKnownBugs) }()
            case "/start", "/help":
                go func() { _ = h.svc.SendHelp(context.Background(), chatID) }()
            }
        }
    }

    c.JSON(http.StatusOK, gin.H{"ok": true})
}
