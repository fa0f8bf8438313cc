package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lazypower/texprogress/internal/auth"
	"github.com/lazypower/texprogress/internal/github"
	"github.com/lazypower/texprogress/internal/gitfetch"
	"github.com/lazypower/texprogress/internal/scan"
)

// DefaultCloneTimeout bounds a single repository fetch.
const DefaultCloneTimeout = 120 * time.Second

// GitHubLister adapts a github.Client to Lister.
type GitHubLister struct {
	Client       *github.Client
	SkipForks    bool
	SkipArchived bool
}

// ListRepositories lists the authenticated user's repositories.
func (g *GitHubLister) ListRepositories(ctx context.Context) ([]Repository, error) {
	repos, err := g.Client.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		if (g.SkipForks && r.Fork) || (g.SkipArchived && r.Archived) {
			continue
		}
		out = append(out, Repository{Name: r.Name, CloneURL: r.CloneURL})
	}
	return out, nil
}

// CloneCounter fetches each repository into a scratch directory, scans it
// and removes the checkout.
type CloneCounter struct {
	Fetcher    gitfetch.Fetcher
	Scanner    *scan.Scanner
	Token      auth.Token
	ScratchDir string // "" means the OS temp dir
	Timeout    time.Duration
	Logger     *slog.Logger
}

// CountRepository implements Counter.
func (c *CloneCounter) CountRepository(ctx context.Context, repo Repository) (RepoCount, error) {
	if c.ScratchDir != "" {
		if err := os.MkdirAll(c.ScratchDir, 0755); err != nil {
			return RepoCount{}, fmt.Errorf("create scratch dir: %w", err)
		}
	}
	tmp, err := os.MkdirTemp(c.ScratchDir, "texprogress-")
	if err != nil {
		return RepoCount{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	dir := filepath.Join(tmp, "checkout")
	if err := c.fetch(ctx, repo, dir); err != nil {
		return RepoCount{}, err
	}

	res, err := c.Scanner.Scan(ctx, dir)
	if err != nil {
		return RepoCount{}, err
	}
	if res.Skipped > 0 && c.Logger != nil {
		c.Logger.Debug("unreadable files skipped", "repo", repo.Name, "skipped", res.Skipped)
	}
	return RepoCount{Files: len(res.Files), Words: res.Words}, nil
}

func (c *CloneCounter) fetch(ctx context.Context, repo Repository, dir string) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCloneTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.Fetcher.Fetch(ctx, repo.CloneURL, dir, c.Token); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("clone timed out after %s", timeout)
		}
		return err
	}
	return nil
}
