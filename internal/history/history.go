package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store keeps one row per pipeline run in Postgres so operators can see what
// was scanned and shipped. The pipeline treats it as best-effort.
type Store struct {
	pool *pgxpool.Pool
}

// Run is the persisted summary of a single pipeline run.
type Run struct {
	ID             string
	Repo           string
	Branch         string
	Target         string
	MisconfigCount int
	VulnCount      int
	SecretCount    int
	UploadStatus   string
	StartedAt      time.Time
}

func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the history table when it does not exist yet. Safe to
// run on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS scan_runs (
  id UUID PRIMARY KEY,
  repo TEXT,
  branch TEXT,
  target TEXT NOT NULL,
  misconfig_count INTEGER NOT NULL DEFAULT 0,
  vuln_count INTEGER NOT NULL DEFAULT 0,
  secret_count INTEGER NOT NULL DEFAULT 0,
  upload_status TEXT NOT NULL,
  started_at TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scan_runs_repo_finished ON scan_runs (repo, finished_at);
`)
	return err
}

func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO scan_runs (id, repo, branch, target, misconfig_count, vuln_count, secret_count, upload_status, started_at)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
`,
		run.ID,
		nullableString(run.Repo),
		nullableString(run.Branch),
		run.Target,
		run.MisconfigCount,
		run.VulnCount,
		run.SecretCount,
		run.UploadStatus,
		run.StartedAt,
	)
	return err
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
