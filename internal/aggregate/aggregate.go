// Package aggregate sums word counts across repositories and records the
// daily total.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lazypower/texprogress/internal/series"
)

// Repository is one source of documents.
type Repository struct {
	Name     string
	CloneURL string
}

// Lister enumerates the repositories to count.
type Lister interface {
	ListRepositories(ctx context.Context) ([]Repository, error)
}

// Counter counts the words of one repository.
type Counter interface {
	CountRepository(ctx context.Context, repo Repository) (RepoCount, error)
}

// RepoCount is what a Counter found in one repository.
type RepoCount struct {
	Files int
	Words int
}

// RunRecorder keeps an audit trail of runs. Failures are logged, never fatal.
type RunRecorder interface {
	RecordRun(ctx context.Context, r *Report) error
}

// RepoResult is one repository's contribution. Err is set when the
// repository contributed 0 because it could not be counted.
type RepoResult struct {
	Repo  string
	Files int
	Words int
	Err   error
}

// Report summarizes one run.
type Report struct {
	Day      string
	Total    int
	Repos    []RepoResult
	Started  time.Time
	Finished time.Time
	Series   []series.Record
}

// Failed returns the number of repositories that contributed 0 due to an error.
func (r *Report) Failed() int {
	n := 0
	for _, rr := range r.Repos {
		if rr.Err != nil {
			n++
		}
	}
	return n
}

// Options configures an Aggregator.
type Options struct {
	Logger   *slog.Logger
	Recorder RunRecorder
	Clock    func() time.Time
}

// Aggregator runs the count and stores the daily total.
type Aggregator struct {
	lister  Lister
	counter Counter
	store   series.Store
	opts    Options
}

// New creates an Aggregator.
func New(lister Lister, counter Counter, store series.Store, opts Options) *Aggregator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Aggregator{lister: lister, counter: counter, store: store, opts: opts}
}

// Count lists repositories and sums their word counts sequentially. A
// repository that fails contributes 0 and is reported; only a listing
// failure or cancellation of ctx is returned as an error.
func (a *Aggregator) Count(ctx context.Context) (*Report, error) {
	log := a.opts.Logger
	rep := &Report{Started: a.opts.Clock()}

	repos, err := a.lister.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	log.Info("found repositories", "count", len(repos))

	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("count interrupted: %w", err)
		}

		res := RepoResult{Repo: repo.Name}
		c, err := a.counter.CountRepository(ctx, repo)
		if err != nil {
			res.Err = err
			log.Warn("repository skipped", "repo", repo.Name, "error", err)
		} else {
			res.Files, res.Words = c.Files, c.Words
			rep.Total += c.Words
			log.Info("repository counted", "repo", repo.Name, "files", c.Files, "words", c.Words)
		}
		rep.Repos = append(rep.Repos, res)
	}

	rep.Finished = a.opts.Clock()
	return rep, nil
}

// Run counts every repository, upserts the total for today's UTC date,
// trims the series to series.Retention records and persists it.
func (a *Aggregator) Run(ctx context.Context, today time.Time) (*Report, error) {
	rep, err := a.Count(ctx)
	if err != nil {
		return nil, err
	}
	rep.Day = series.Day(today)

	rep.Series, err = series.Update(ctx, a.store, rep.Day, rep.Total)
	if err != nil {
		return nil, err
	}
	a.opts.Logger.Info("daily total saved", "day", rep.Day, "words", rep.Total, "failed", rep.Failed())

	if a.opts.Recorder != nil {
		if err := a.opts.Recorder.RecordRun(ctx, rep); err != nil {
			a.opts.Logger.Warn("could not record run", "error", err)
		}
	}
	return rep, nil
}

// Static is a Lister over a fixed set of repositories.
type Static []Repository

// ListRepositories returns the fixed set.
func (s Static) ListRepositories(ctx context.Context) ([]Repository, error) {
	return s, nil
}
