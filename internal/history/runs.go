package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, archive, mode, charset, min_length, max_length, status, candidate, attempts, elapsed_ms, started_at, finished_at, error"

// Begin records a new run in the running state.
func (s *Store) Begin(ctx context.Context, run Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, archive, mode, charset, min_length, max_length, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Archive,
		run.Mode,
		nullableString(run.Charset),
		run.MinLength,
		run.MaxLength,
		StatusRunning,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish stores the terminal state of a run.
func (s *Store) Finish(ctx context.Context, id string, status Status, candidate string, attempts int64, elapsed time.Duration, runErr error) error {
	var errText string
	if runErr != nil {
		errText = runErr.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, candidate = ?, attempts = ?, elapsed_ms = ?, finished_at = ?, error = ?
         WHERE id = ?`,
		status,
		nullableString(candidate),
		attempts,
		elapsed.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339Nano),
		nullableString(errText),
		id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish %s: %w", id, ErrNotFound)
	}
	return nil
}

// Get fetches a run by ID.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return run, err
}

// List returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		status      string
		charset     sql.NullString
		candidate   sql.NullString
		elapsedMS   int64
		startedRaw  string
		finishedRaw sql.NullString
		errText     sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Archive,
		&run.Mode,
		&charset,
		&run.MinLength,
		&run.MaxLength,
		&status,
		&candidate,
		&run.Attempts,
		&elapsedMS,
		&startedRaw,
		&finishedRaw,
		&errText,
	); err != nil {
		return Run{}, err
	}
	run.Status = Status(status)
	run.Charset = charset.String
	run.Candidate = candidate.String
	run.Error = errText.String
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	return run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
