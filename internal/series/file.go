package series

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// document is the on-disk layout of the history file.
type document struct {
	DailyCounts []Record `json:"daily_counts"`
}

// FileStore persists the series as a JSON document.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the series. A missing file is an empty series; a record with a
// malformed date or a negative count makes the whole file invalid.
func (f *FileStore) Load(ctx context.Context) ([]Record, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", f.Path, err)
	}
	for _, r := range doc.DailyCounts {
		if _, err := ParseDay(r.Date); err != nil {
			return nil, fmt.Errorf("history %s: %w", f.Path, err)
		}
		if r.Words < 0 {
			return nil, fmt.Errorf("history %s: negative count %d on %s", f.Path, r.Words, r.Date)
		}
	}
	Sort(doc.DailyCounts)
	return doc.DailyCounts, nil
}

// Save rewrites the whole document through a temp file and rename.
func (f *FileStore) Save(ctx context.Context, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(document{DailyCounts: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return writeAtomic(f.Path, append(data, '\n'))
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
