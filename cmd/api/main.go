/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/mvidal/orgpulse/internal/adapters/github"
    "github.com/mvidal/orgpulse/internal/adapters/openai"
    "github.com/mvidal/orgpulse/internal/adapters/telegram"
    "github.com/mvidal/orgpulse/internal/config"
    httpapi "github.com/mvidal/orgpulse/internal/http"
    "github.com/mvidal/orgpulse/internal/jobs"
    "github.com/mvidal/orgpulse/internal/logger"
    "github.com/mvidal/orgpulse/internal/repo"
    "github.com/mvidal/orgpulse/internal/services"
)

func main() {
    _ = godotenv.Load()
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    db := repo.MustOpen(ctx, cfg, log)
    defer db.Close()
    if err := db.EnsureSchema(ctx); err != nil { log.Fatal().Err(err).Msg("schema setup failed") }

    gh := github.NewClient(cfg, log)
    var llm services.LLM
    if cfg.OpenAIKey != "" { llm = openai.NewClient(cfg, log) }
    var tg *telegram.Client
    if cfg.TelegramToken != "" { tg = telegram.NewClient(cfg, log) }

    repository := repo.NewRepository(db, log)
    var notifier services.Notifier
    if tg != nil { notifier = tg }
    svc := services.New(cfg, log, repository, gh, llm, notifier)

    router := httpapi.NewRouter(cfg, log, svc)

    // webhook registration needs a public HTTPS endpoint
    if tg != nil && cfg.TelegramWebhookSecret != "" && strings.HasPrefix(strings.ToLower(cfg.PublicBaseURL), "https://") {
        go func() {
            ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second); defer cancel()
            base := strings.TrimRight(cfg.PublicBaseURL, "/")
            webhookURL := base + "/telegram/webhook/" + cfg.TelegramWebhookSecret
            if err := tg.SetWebhook(ctx, webhookURL, cfg.TelegramWebhookSecret); err != nil {
                log.Error().Err(err).Str("url", webhookURL).Msg("telegram setWebhook failed")
            } else {
                log.Info().Str("url", webhookURL).Msg("telegram setWebhook ok")
            }
        }()
    }

    cron := jobs.NewCron(cfg, log, svc, repository)
    cron.Start()
    defer cron.Stop()

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
