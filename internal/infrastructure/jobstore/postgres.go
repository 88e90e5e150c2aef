package jobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"streamsplit/internal/domain/job"
)

// Postgres persists jobs so the service survives restarts. Selected by
// setting JOB_STORE_DSN; the in-memory store stays the default.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens the connection and ensures the jobs table exists.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect job store: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	progress INT NOT NULL DEFAULT 0,
	message TEXT NOT NULL DEFAULT '',
	output_files TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensure jobs table: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close releases the database handle.
func (p *Postgres) Close() error { return p.db.Close() }

// Create inserts a new job row.
func (p *Postgres) Create(ctx context.Context, j job.Job) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, progress, message, output_files, error, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		j.ID, string(j.Status), j.Progress, j.Message, joinFiles(j.OutputFiles), j.Error, j.CreatedAt, j.CompletedAt)
	if err != nil {
		return fmt.Errorf("create job %s: %w", j.ID, err)
	}
	return nil
}

// Get loads one job row.
func (p *Postgres) Get(ctx context.Context, id string) (job.Job, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, status, progress, message, output_files, error, created_at, completed_at
		 FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

// List returns all jobs ordered by creation time.
func (p *Postgres) List(ctx context.Context) ([]job.Job, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, status, progress, message, output_files, error, created_at, completed_at
		 FROM jobs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Update applies fn to the row inside a transaction, holding a row lock
// so concurrent status reads never observe a half-applied change.
func (p *Postgres) Update(ctx context.Context, id string, fn func(*job.Job)) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, status, progress, message, output_files, error, created_at, completed_at
		 FROM jobs WHERE id = $1 FOR UPDATE`, id)
	j, err := scanJob(row)
	if err != nil {
		return err
	}

	fn(&j)

	_, err = tx.ExecContext(ctx,
		`UPDATE jobs SET status = $2, progress = $3, message = $4, output_files = $5, error = $6, completed_at = $7
		 WHERE id = $1`,
		j.ID, string(j.Status), j.Progress, j.Message, joinFiles(j.OutputFiles), j.Error, j.CompletedAt)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (job.Job, error) {
	var (
		j           job.Job
		status      string
		files       string
		completedAt sql.NullTime
	)
	err := row.Scan(&j.ID, &status, &j.Progress, &j.Message, &files, &j.Error, &j.CreatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return job.Job{}, job.ErrNotFound
	}
	if err != nil {
		return job.Job{}, fmt.Errorf("scan job: %w", err)
	}
	j.Status = job.State(status)
	j.OutputFiles = splitFiles(files)
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		j.CompletedAt = &t
	}
	return j, nil
}

func joinFiles(files []string) string {
	return strings.Join(files, "\n")
}

func splitFiles(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}
