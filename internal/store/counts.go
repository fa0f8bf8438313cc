package store

import (
	"context"
	"fmt"

	"github.com/lazypower/texprogress/internal/series"
)

// SeriesStore adapts DB to series.Store.
type SeriesStore struct {
	db *DB
}

// Series returns the series.Store view of the database.
func (db *DB) Series() *SeriesStore {
	return &SeriesStore{db: db}
}

// Load returns the retained window ordered by day.
func (s *SeriesStore) Load(ctx context.Context) ([]series.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT day, words FROM daily_counts ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("load daily counts: %w", err)
	}
	defer rows.Close()

	var records []series.Record
	for rows.Next() {
		var r series.Record
		if err := rows.Scan(&r.Date, &r.Words); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Save replaces the stored window with records in one transaction.
func (s *SeriesStore) Save(ctx context.Context, records []series.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_counts`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear daily counts: %w", err)
	}
	for _, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO daily_counts (day, words) VALUES (?, ?)`, r.Date, r.Words,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", r.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit daily counts: %w", err)
	}
	return nil
}
