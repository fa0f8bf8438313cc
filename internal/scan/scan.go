// Package scan walks a checkout and counts words in matching source files.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/lazypower/texprogress/internal/texcount"
)

// DefaultInclude matches .tex files at any depth.
var DefaultInclude = []string{"*.tex", "**/*.tex"}

// File is one counted source file.
type File struct {
	Path  string // relative to the scan root, slash separated
	Size  int64
	Words int
}

// Result is the outcome of scanning one root.
type Result struct {
	Files   []File
	Words   int
	Skipped int
}

// Scanner matches files by relative path against include and exclude globs.
type Scanner struct {
	include []glob.Glob
	exclude []glob.Glob
	logger  *slog.Logger
}

// New compiles the patterns. An empty include list means DefaultInclude.
func New(include, exclude []string, logger *slog.Logger) (*Scanner, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scanner{logger: logger}
	var err error
	if s.include, err = compile(include); err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	if s.exclude, err = compile(exclude); err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return s, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Match reports whether a slash separated relative path is selected.
func (s *Scanner) Match(rel string) bool {
	return matchAny(s.include, rel) && !matchAny(s.exclude, rel)
}

func matchAny(globs []glob.Glob, rel string) bool {
	for _, g := range globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Scan counts every matching regular file under root. Unreadable files are
// logged and skipped; only a failure to walk root itself is an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}

	res := &Result{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			res.Skipped++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !s.Match(rel) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("could not read file", "path", rel, "error", err)
			res.Skipped++
			return nil
		}
		words := texcount.Count(texcount.Decode(data))
		res.Files = append(res.Files, File{Path: rel, Size: int64(len(data)), Words: words})
		res.Words += words
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return res, nil
}
