package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is the stored outcome of one aggregation run.
type Run struct {
	ID         string
	Day        string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Repos      int
	Failed     int
	Results    []RepoResult
}

// RepoResult is one repository's contribution to a run.
type RepoResult struct {
	Repo  string
	Files int
	Words int
	Error string
}

// SaveRun stores a run and its repository results. A missing ID is
// generated.
func (db *DB) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, day, started_at, finished_at, total, repos, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Day, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.Total, run.Repos, run.Failed)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range run.Results {
		var errText sql.NullString
		if r.Error != "" {
			errText = sql.NullString{String: r.Error, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO repo_results (run_id, repo, files, words, error)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, r.Repo, r.Files, r.Words, errText); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert result %s: %w", r.Repo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first, without results.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, day, started_at, finished_at, total, repos, failed
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Day, &started, &finished, &r.Total, &r.Repos, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.FinishedAt = time.UnixMilli(finished).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunResults returns the repository results of a run ordered by repo name.
func (db *DB) RunResults(ctx context.Context, runID string) ([]RepoResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT repo, files, words, error FROM repo_results
		WHERE run_id = ? ORDER BY repo
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("run results: %w", err)
	}
	defer rows.Close()

	var results []RepoResult
	for rows.Next() {
		var r RepoResult
		var errText sql.NullString
		if err := rows.Scan(&r.Repo, &r.Files, &r.Words, &errText); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Error = errText.String
		results = append(results, r)
	}
	return results, rows.Err()
}
