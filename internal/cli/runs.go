package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recent update runs, or one run's repositories",
	Long: `Show the run log kept by the sqlite backend.

Examples:
  texprogress runs                 # last 10 runs
  texprogress runs --limit 30
  texprogress runs 6f1c...         # per-repository results of one run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cfg.Storage)
		if err != nil {
			return err
		}
		defer b.Close()
		if b.db == nil {
			return errNoRunLog
		}

		w := cmd.OutOrStdout()
		if len(args) == 1 {
			results, err := b.db.RunResults(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no results for run %s", args[0])
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := green("ok")
				if r.Error != "" {
					status = red(r.Error)
				}
				rows = append(rows, []string{r.Repo, fmt.Sprint(r.Files), words(r.Words), status})
			}
			return renderTable(w, []string{"Repository", "Files", "Words", "Status"}, rows)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := b.db.RecentRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs recorded yet.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			failed := faint("0")
			if r.Failed > 0 {
				failed = red(fmt.Sprint(r.Failed))
			}
			rows = append(rows, []string{
				r.ID,
				r.Day,
				r.StartedAt.UTC().Format(time.DateTime),
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
				words(r.Total),
				fmt.Sprint(r.Repos),
				failed,
			})
		}
		return renderTable(w, []string{"ID", "Day", "Started", "Took", "Words", "Repos", "Failed"}, rows)
	},
}

func init() {
	runsCmd.Flags().Int("limit", 10, "number of runs to show")
}
