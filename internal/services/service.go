/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "sort"
    "time"

    "github.com/google/uuid"
    "github.com/mvidal/orgpulse/internal/config"
    "github.com/mvidal/orgpulse/internal/domain"
    "github.com/mvidal/orgpulse/internal/repo"
    "github.com/mvidal/orgpulse/internal/report"
    "github.com/rs/zerolog"
)

type TrackerClient interface {
    SearchIssues(ctx context.Context, query string, page, perPage int) ([]domain.Issue, int, error)
    SubIssues(ctx context.Context, owner, repoName string, number int) []domain.SubIssueRef
    ParentIssue(ctx context.Context, owner, repoName string, number int) *domain.FetchedParent
    ListRepoIssues(ctx context.Context, owner, repoName, state, label string) ([]domain.Issue, error)
    CreateIssue(ctx context.Context, owner, repoName, title, body string, labels []string) (string, error)
    AddLabels(ctx context.Context, owner, repoName string, number int, labels []string) error
    EnsureLabel(ctx context.Context, owner, repoName, name, color string) error
}

type LLM interface {
    Summarize(ctx context.Context, metrics map[string]*domain.TypeCounts) (string, error)
}

type Notifier interface {
    SendMessage(ctx context.Context, chatID int64, text string) error
    SendMessagePlain(ctx context.Context, chatID int64, text string) error
}

type Service struct {
    cfg  config.Config
    log  zerolog.Logger
    repo *repo.Repository
    gh   TrackerClient
    llm  LLM
    tg   Notifier
}

// New wires the service. repo, llm and tg may be nil; the corresponding
// steps are skipped.
func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, gh TrackerClient, llm LLM, tg Notifier) *Service {
    return &Service{cfg: cfg, log: log, repo: r, gh: gh, llm: llm, tg: tg}
}

// reportContext carries the per-run values the section emitters need.
type reportContext struct {
    ctx             context.Context
    org             string
    showParentChild bool
}

// ReportOptions selects what one report run covers.
type ReportOptions struct {
    Org              string
    Repos            []string
    State            string
    StartTime        string
    EndTime          string
    Kind             string
    GroupByComponent bool
    ShowParentChild  bool
    OutputDir        string
    Notify           bool
}

// ReportResult is what a finished run produced.
type ReportResult struct {
    RunID        uuid.UUID
    MarkdownPath string
    CSVPath      string
    Markdown     string
    GrandTotal   int
}

func reportTitle(kind, org string, now time.Time) string {
    if kind == config.ReportKnownBugs {
        return "Known Bugs on " + now.Format("2006-01-02")
    }
    return org + " Issues"
}

// RunReport fetches the organization's issues, renders the requested report
// shape plus the metrics summary, writes the output files and records the
// run. Fetch problems for individual repositories degrade the report rather
// than failing it; only output writing and store errors are fatal.
func (s *Service) RunReport(ctx context.Context, opts ReportOptions) (*ReportResult, error) {
    if opts.Org == "" { return nil, fmt.Errorf("organization is required") }
    if opts.Kind == "" { opts.Kind = config.ReportPlanning }
    started := time.Now().UTC()

    var runID uuid.UUID
    if s.repo != nil {
        id, err := s.repo.StartReportRun(ctx, opts.Kind, opts.Org)
        if err != nil { return nil, fmt.Errorf("record run start: %w", err) }
        runID = id
    }

    var repoProduct map[string]RepoProduct
    if opts.GroupByComponent {
        repoProduct = buildRepoProductMap(loadProductsConfig(s.cfg.ProductsFile, s.log))
    }

    s.log.Info().Str("org", opts.Org).Str("kind", opts.Kind).Str("state", opts.State).Msg("searching organization issues")
    allRepos := s.fetchOrgIssuesByTypeAndRepo(ctx, opts.Org, opts.Repos, opts.State, opts.StartTime, opts.EndTime)

    doc := report.NewMdDoc(reportTitle(opts.Kind, opts.Org, started))
    s.emitRepoSections(ctx, doc, opts, allRepos, repoProduct)

    metrics := computeMetrics(allRepos, repoProduct, opts.GroupByComponent)
    metricsSection(doc, metrics, opts.State, opts.StartTime, opts.EndTime, opts.GroupByComponent)

    res := &ReportResult{RunID: runID, Markdown: doc.String(), GrandTotal: metrics.GrandTotal()}

    if opts.OutputDir != "" {
        name := opts.Kind + "_" + started.Format("2006-01-02")
        path, err := doc.WriteFile(opts.OutputDir, name)
        if err != nil { return nil, s.failRun(ctx, runID, fmt.Errorf("write markdown report: %w", err)) }
        res.MarkdownPath = path

        csvDoc := report.NewCsvDoc()
        metricsSection(csvDoc, metrics, opts.State, opts.StartTime, opts.EndTime, opts.GroupByComponent)
        csvPath, err := csvDoc.WriteFile(opts.OutputDir, name+"_metrics")
        if err != nil { return nil, s.failRun(ctx, runID, fmt.Errorf("write metrics csv: %w", err)) }
        res.CSVPath = csvPath
    }

    if s.repo != nil {
        if err := s.repo.InsertRunMetrics(ctx, runID, metrics.ByBucket); err != nil {
            return nil, s.failRun(ctx, runID, fmt.Errorf("record run metrics: %w", err))
        }
        if err := s.repo.FinishReportRun(ctx, runID, repo.RunStatusDone, res.GrandTotal, res.MarkdownPath); err != nil {
            return nil, fmt.Errorf("record run finish: %w", err)
        }
    }

    s.notifyRun(ctx, opts, metrics)
    s.log.Info().Str("kind", opts.Kind).Int("total", res.GrandTotal).Dur("took", time.Since(started)).Msg("report run finished")
    return res, nil
}

func (s *Service) failRun(ctx context.Context, runID uuid.UUID, cause error) error {
    if s.repo != nil && runID != uuid.Nil {
        if err := s.repo.FinishReportRun(ctx, runID, repo.RunStatusFailed, 0, ""); err != nil {
            s.log.Error().Err(err).Msg("could not record run failure")
        }
    }
    return cause
}

// emitRepoSections writes every repository block, either flat in sorted
// repository order or grouped by component. Empty repositories are skipped
// either way.
func (s *Service) emitRepoSections(ctx context.Context, doc Doc, opts ReportOptions, allRepos map[string]map[string][]domain.Issue, repoProduct map[string]RepoProduct) {
    rctx := reportContext{ctx: ctx, org: opts.Org, showParentChild: opts.ShowParentChild}

    section := s.planningSection
    if opts.Kind == config.ReportKnownBugs { section = s.knownBugsSection }

    if opts.GroupByComponent && len(repoProduct) > 0 {
        byProduct := map[string][]string{}
        for repoName, byType := range allRepos {
            if len(combineIssues(byType)) == 0 { continue }
            product := otherBucket
            if p, ok := repoProduct[repoName]; ok { product = p.Name }
            byProduct[product] = append(byProduct[product], repoName)
        }
        products := make([]string, 0, len(byProduct))
        for p := range byProduct { products = append(products, p) }
        sort.Strings(products)
        for _, product := range products {
            if product != otherBucket {
                doc.Header(1, "Component: "+formatComponentName(product))
            }
            sort.Strings(byProduct[product])
            for _, repoName := range byProduct[product] {
                section(doc, rctx, repoName, allRepos[repoName], 0)
            }
        }
        return
    }

    names := make([]string, 0, len(allRepos))
    for repoName := range allRepos { names = append(names, repoName) }
    sort.Strings(names)
    for _, repoName := range names {
        if len(combineIssues(allRepos[repoName])) == 0 { continue }
        section(doc, rctx, repoName, allRepos[repoName], 0)
    }
}

// notifyRun sends the run digest to the configured chat. Failures here are
// logged only; the report has already been produced.
func (s *Service) notifyRun(ctx context.Context, opts ReportOptions, metrics reportMetrics) {
    if !opts.Notify || s.tg == nil || len(s.cfg.TelegramChatIDs) == 0 { return }

    text := fmt.Sprintf("*%s report for %s*\n%s\nTotal issues: %d",
        opts.Kind, opts.Org, metricDescription(opts.State, opts.StartTime, opts.EndTime), metrics.GrandTotal())

    if s.llm != nil {
        summary, err := s.llm.Summarize(ctx, metrics.ByBucket)
        if err != nil {
            s.log.Warn().Err(err).Msg("digest summary failed")
        } else if summary != "" {
            text += "\n\n" + summary
        }
    }
    for _, chatID := range s.cfg.TelegramChatIDs {
        if err := s.tg.SendMessage(ctx, chatID, text); err != nil {
            s.log.Error().Err(err).Int64("chat", chatID).Msg("digest delivery failed")
        }
    }
}

// optionsFromConfig builds the default run options the scheduler and the
// admin endpoint use.
func (s *Service) optionsFromConfig(kind string) ReportOptions {
    if kind == "" { kind = s.cfg.ReportKind }
    return ReportOptions{
        Org:              s.cfg.GitHubOrg,
        Repos:            s.cfg.GitHubRepos,
        State:            s.cfg.IssueState,
        StartTime:        s.cfg.StartTime,
        EndTime:          s.cfg.EndTime,
        Kind:             kind,
        GroupByComponent: s.cfg.GroupByComponent,
        ShowParentChild:  s.cfg.ShowParentChild,
        OutputDir:        s.cfg.OutputDir,
        Notify:           true,
    }
}

// RunScheduledReport is the cron entrypoint.
func (s *Service) RunScheduledReport(ctx context.Context) error {
    _, err := s.RunReport(ctx, s.optionsFromConfig(""))
    return err
}

// RunReportForChat runs a report on demand and answers into one chat only.
func (s *Service) RunReportForChat(ctx context.Context, chatID int64, kind string) error {
    opts := s.optionsFromConfig(kind)
    opts.Notify = false
    res, err := s.RunReport(ctx, opts)
    if err != nil {
        if s.tg != nil { _ = s.tg.SendMessagePlain(ctx, chatID, "report failed: "+err.Error()) }
        return err
    }
    if s.tg == nil { return nil }
    text := fmt.Sprintf("*%s report for %s*\nTotal issues: %d", opts.Kind, opts.Org, res.GrandTotal)
    if res.MarkdownPath != "" { text += "\nSaved to " + res.MarkdownPath }
    return s.tg.SendMessage(ctx, chatID, text)
}

// SendHelp lists the chat commands.
func (s *Service) SendHelp(ctx context.Context, chatID int64) error {
    if s.tg == nil { return nil }
    help := "Commands:\n" +
        "/report planning - planning report with parent and standalone issues\n" +
        "/report bugs - known bugs report\n" +
        "/help - this message"
    return s.tg.SendMessagePlain(ctx, chatID, help)
}

// GetLastRun exposes the most recent recorded run for the admin surface.
func (s *Service) GetLastRun(ctx context.Context) (*repo.ReportRun, error) {
    if s.repo == nil { return nil, fmt.Errorf("run history store not configured") }
    return s.repo.GetLastRun(ctx)
}
