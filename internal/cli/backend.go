package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/lazypower/texprogress/internal/aggregate"
	"github.com/lazypower/texprogress/internal/config"
	"github.com/lazypower/texprogress/internal/series"
	"github.com/lazypower/texprogress/internal/store"
)

var errNoRunLog = errors.New("the run log needs storage.backend: sqlite")

// backend is the configured series store. db is set only for sqlite.
type backend struct {
	series.Store
	db *store.DB
}

func (b *backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func openBackend(sc config.StorageConfig) (*backend, error) {
	switch sc.Backend {
	case "sqlite":
		path := sc.DBPath
		if path == "" {
			path = store.DefaultDBPath()
		}
		db, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		logger.Debug("using sqlite store", "path", path)
		return &backend{Store: db.Series(), db: db}, nil
	default:
		logger.Debug("using json store", "path", sc.Path)
		return &backend{Store: series.NewFileStore(sc.Path)}, nil
	}
}

// runRecorder writes aggregation reports to the sqlite run log.
type runRecorder struct {
	db *store.DB
}

func (r runRecorder) RecordRun(ctx context.Context, rep *aggregate.Report) error {
	run := &store.Run{
		Day:        rep.Day,
		StartedAt:  rep.Started,
		FinishedAt: rep.Finished,
		Total:      rep.Total,
		Repos:      len(rep.Repos),
		Failed:     rep.Failed(),
	}
	for _, rr := range rep.Repos {
		res := store.RepoResult{Repo: rr.Repo, Files: rr.Files, Words: rr.Words}
		if rr.Err != nil {
			res.Error = rr.Err.Error()
		}
		run.Results = append(run.Results, res)
	}
	return r.db.SaveRun(ctx, run)
}
