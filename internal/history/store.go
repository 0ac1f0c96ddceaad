// Package history keeps a local record of past bulk scrape runs in sqlite.
// Recording is best-effort: a broken history database never fails a run.
package history

import (
	"context"
	"embed"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"sitegrab-cli/config"
	"sitegrab-cli/internal/bulk"

	_ "modernc.org/sqlite"
)

const dbFileName = "history.db"

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Run struct {
	ID         string    `db:"id"`
	Site       string    `db:"site"`
	Total      int       `db:"total"`
	Completed  int       `db:"completed"`
	Failed     int       `db:"failed"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}

type Store struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

// Opener defers opening the database until a command actually needs it, so
// unrelated commands never touch the file.
type Opener func() (*Store, error)

func NewOpener(cfg config.Config, logger *zap.SugaredLogger) Opener {
	return func() (*Store, error) {
		return Open(cfg, logger)
	}
}

// Open creates or migrates the history database under the state dir.
func Open(cfg config.Config, logger *zap.SugaredLogger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	dir, err := cfg.ResolveStateDir()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun satisfies the orchestrator's Recorder.
func (s *Store) RecordRun(ctx context.Context, run bulk.RunSummary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bulk_runs (id, site, total, completed, failed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), run.Site, run.Total, run.Completed, run.Failed,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		`SELECT id, site, total, completed, failed, started_at, finished_at
		 FROM bulk_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
