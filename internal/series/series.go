// Package series holds the daily word-count history and its derived deltas.
package series

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Retention is the maximum number of daily records kept.
const Retention = 30

// DateLayout is the ISO 8601 day format used for record dates.
const DateLayout = "2006-01-02"

// Record is the total word count observed on one UTC calendar day.
type Record struct {
	Date  string `json:"date"`
	Words int    `json:"words"`
}

// Delta is the day-over-day change for one record. Never persisted.
type Delta struct {
	Date   string `json:"date"`
	Change int    `json:"change"`
	Total  int    `json:"total"`
}

// Store loads and saves the whole series.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// Day formats t as the UTC calendar date used as a record key.
func Day(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDay validates a record date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Upsert sets the word count for date, replacing an existing record for the
// same date or appending a new one. The input slice is not modified. The
// result is sorted ascending by date.
func Upsert(records []Record, date string, words int) []Record {
	out := make([]Record, 0, len(records)+1)
	found := false
	for _, r := range records {
		if r.Date == date {
			if !found {
				out = append(out, Record{Date: date, Words: words})
				found = true
			}
			continue
		}
		out = append(out, r)
	}
	if !found {
		out = append(out, Record{Date: date, Words: words})
	}
	Sort(out)
	return out
}

// Sort orders records ascending by date in place.
func Sort(records []Record) {
	// ISO dates sort lexically.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
}

// Trim keeps the newest max records. records must already be sorted.
func Trim(records []Record, max int) []Record {
	if max < 0 {
		max = 0
	}
	if len(records) <= max {
		return records
	}
	return records[len(records)-max:]
}

// Deltas derives the day-over-day change for each record. The first record
// has change 0.
func Deltas(records []Record) []Delta {
	out := make([]Delta, len(records))
	for i, r := range records {
		change := 0
		if i > 0 {
			change = r.Words - records[i-1].Words
		}
		out[i] = Delta{Date: r.Date, Change: change, Total: r.Words}
	}
	return out
}

// Update loads the series from st, upserts words for day, trims to
// Retention and saves it back. It returns the saved series.
func Update(ctx context.Context, st Store, day string, words int) ([]Record, error) {
	if words < 0 {
		return nil, fmt.Errorf("negative word count %d", words)
	}
	records, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	records = Trim(Upsert(records, day, words), Retention)
	if err := st.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("save series: %w", err)
	}
	return records, nil
}
