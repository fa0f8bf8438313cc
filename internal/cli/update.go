package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lazypower/texprogress/internal/aggregate"
	"github.com/lazypower/texprogress/internal/auth"
	"github.com/lazypower/texprogress/internal/chart"
	"github.com/lazypower/texprogress/internal/github"
	"github.com/lazypower/texprogress/internal/gitfetch"
	"github.com/lazypower/texprogress/internal/scan"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Count words across repositories and record today's total",
	Long: `Clone every repository owned by the authenticated GitHub user, count the
words in matching .tex files and store the total for today's UTC date.

The token is read from GH_TOKEN or GITHUB_TOKEN. A repository that cannot be
cloned or scanned contributes 0 words; the run still succeeds.

Examples:
  texprogress update                          # all owned repositories
  texprogress update --repo me/thesis         # just one
  texprogress update --render                 # also redraw the chart`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringSlice("repo", nil, "count only these repositories (owner/name, URL or local path)")
	updateCmd.Flags().Bool("render", false, "write the chart after recording")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	// Before any network call.
	token, err := auth.FromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(cfg.Storage)
	if err != nil {
		return err
	}
	defer b.Close()

	client := github.NewClient(token,
		github.WithBaseURL(cfg.GitHub.APIURL),
		github.WithPerPage(cfg.GitHub.PerPage),
		github.WithAffiliation(cfg.GitHub.Affiliation),
	)

	var lister aggregate.Lister
	repoFlags, _ := cmd.Flags().GetStringSlice("repo")
	if len(repoFlags) > 0 {
		lister = staticRepos(repoFlags)
	} else {
		if login, err := client.CurrentUser(ctx); err != nil {
			logger.Warn("could not resolve GitHub user", "error", err)
		} else {
			logger.Info("authenticated", "user", login)
		}
		lister = &aggregate.GitHubLister{
			Client:       client,
			SkipForks:    cfg.GitHub.SkipForks,
			SkipArchived: cfg.GitHub.SkipArchived,
		}
	}

	fetcher, err := gitfetch.New(cfg.Fetch.Method)
	if err != nil {
		return err
	}
	scanner, err := scan.New(cfg.Scan.Include, cfg.Scan.Exclude, logger)
	if err != nil {
		return err
	}
	counter := &aggregate.CloneCounter{
		Fetcher:    fetcher,
		Scanner:    scanner,
		Token:      token,
		ScratchDir: cfg.Fetch.ScratchDir,
		Timeout:    cfg.Fetch.Timeout,
		Logger:     logger,
	}

	opts := aggregate.Options{Logger: logger, Clock: now}
	if b.db != nil {
		opts.Recorder = runRecorder{db: b.db}
	}

	today := now()
	rep, err := aggregate.New(lister, counter, b, opts).Run(ctx, today)
	if err != nil {
		return err
	}

	if err := printReport(cmd.OutOrStdout(), rep); err != nil {
		return err
	}

	render, _ := cmd.Flags().GetBool("render")
	if render {
		svg := chart.Render(rep.Series, chart.Options{Now: today, Title: cfg.Chart.Title})
		if err := chart.WriteFile(cfg.Chart.Output, svg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", cfg.Chart.Output)
	}
	return nil
}

// staticRepos turns --repo values into a fixed repository list. Bare
// owner/name values are resolved against github.com.
func staticRepos(values []string) aggregate.Static {
	repos := make(aggregate.Static, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		cloneURL := v
		if !strings.Contains(v, "://") && !strings.HasPrefix(v, "/") && !strings.HasPrefix(v, ".") {
			cloneURL = "https://github.com/" + strings.TrimSuffix(v, ".git") + ".git"
		}
		name := strings.TrimSuffix(path.Base(strings.TrimRight(v, "/")), ".git")
		repos = append(repos, aggregate.Repository{Name: name, CloneURL: cloneURL})
	}
	return repos
}

func printReport(w io.Writer, rep *aggregate.Report) error {
	rows := make([][]string, 0, len(rep.Repos))
	for _, rr := range rep.Repos {
		status := green("ok")
		if rr.Err != nil {
			status = red("failed: " + rr.Err.Error())
		}
		rows = append(rows, []string{rr.Repo, fmt.Sprint(rr.Files), words(rr.Words), status})
	}
	if err := renderTable(w, []string{"Repository", "Files", "Words", "Status"}, rows); err != nil {
		return err
	}

	change := 0
	if n := len(rep.Series); n > 1 {
		change = rep.Series[n-1].Words - rep.Series[n-2].Words
	}
	fmt.Fprintf(w, "\n%s %s words on %s (%s), %s\n",
		bold("Total:"), words(rep.Total), rep.Day, formatDelta(change),
		plural(len(rep.Repos), "repository", "repositories"))
	if failed := rep.Failed(); failed > 0 {
		fmt.Fprintf(w, "%s\n", red(plural(failed, "repository", "repositories")+" skipped"))
	}
	return nil
}
