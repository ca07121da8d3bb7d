package repo

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/mvidal/orgpulse/internal/config"
    "github.com/mvidal/orgpulse/internal/domain"
    "github.com/rs/zerolog"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

// EnsureSchema creates the run-history tables when they are missing.
func (d *DB) EnsureSchema(ctx context.Context) error {
    const q = `
        CREATE TABLE IF NOT EXISTS report_runs(
            id UUID PRIMARY KEY,
            kind TEXT NOT NULL,
            org TEXT NOT NULL,
            status TEXT NOT NULL,
            total_issues INT NOT NULL DEFAULT 0,
            output_path TEXT NOT NULL DEFAULT '',
            started_at TIMESTAMPTZ NOT NULL,
            finished_at TIMESTAMPTZ
        );
        CREATE TABLE IF NOT EXISTS run_metrics(
            run_id UUID NOT NULL REFERENCES report_runs(id) ON DELETE CASCADE,
            bucket TEXT NOT NULL,
            issue_type TEXT NOT NULL,
            count INT NOT NULL,
            PRIMARY KEY(run_id, bucket, issue_type)
        );`
    _, err := d.Pool.Exec(ctx, q)
    return err
}

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

const (
    RunStatusRunning = "running"
    RunStatusDone    = "done"
    RunStatusFailed  = "failed"
)

// ReportRun is one recorded report generation.
type ReportRun struct {
    ID          uuid.UUID
    Kind        string
    Org         string
    Status      string
    TotalIssues int
    OutputPath  string
    StartedAt   time.Time
    FinishedAt  *time.Time
}

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

func (r *Repository) StartReportRun(ctx context.Context, kind, org string) (uuid.UUID, error) {
    id := uuid.New()
    const q = `INSERT INTO report_runs(id, kind, org, status, started_at) VALUES($1,$2,$3,$4,now())`
    if _, err := r.db.Pool.Exec(ctx, q, id, kind, org, RunStatusRunning); err != nil { return uuid.Nil, err }
    return id, nil
}

func (r *Repository) FinishReportRun(ctx context.Context, id uuid.UUID, status string, totalIssues int, outputPath string) error {
    const q = `UPDATE report_runs SET status=$2, total_issues=$3, output_path=$4, finished_at=now() WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, status, totalIssues, outputPath)
    return err
}

// InsertRunMetrics stores the per-bucket type counts of one run in a single
// batch round trip.
func (r *Repository) InsertRunMetrics(ctx context.Context, id uuid.UUID, buckets map[string]*domain.TypeCounts) error {
    if len(buckets) == 0 { return nil }
    batch := &pgx.Batch{}
    const q = `INSERT INTO run_metrics(run_id, bucket, issue_type, count) VALUES($1,$2,$3,$4)
        ON CONFLICT(run_id, bucket, issue_type) DO UPDATE SET count=EXCLUDED.count`
    for bucket, counts := range buckets {
        for issueType, n := range counts.ByType {
            batch.Queue(q, id, bucket, issueType, n)
        }
    }
    br := r.db.Pool.SendBatch(ctx, batch)
    defer br.Close()
    for i := 0; i < batch.Len(); i++ {
        if _, err := br.Exec(); err != nil { return err }
    }
    return nil
}

func (r *Repository) GetLastRun(ctx context.Context) (*ReportRun, error) {
    const q = `SELECT id, kind, org, status, total_issues, output_path, started_at, finished_at
        FROM report_runs ORDER BY started_at DESC LIMIT 1`
    var run ReportRun
    err := r.db.Pool.QueryRow(ctx, q).Scan(&run.ID, &run.Kind, &run.Org, &run.Status, &run.TotalIssues, &run.OutputPath, &run.StartedAt, &run.FinishedAt)
    if errors.Is(err, pgx.ErrNoRows) { return nil, nil }
    if err != nil { return nil, err }
    return &run, nil
}
