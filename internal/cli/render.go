package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/texprogress/internal/chart"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the progress chart from the stored series",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cfg.Storage)
		if err != nil {
			return err
		}
		defer b.Close()

		records, err := b.Load(cmd.Context())
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = cfg.Chart.Output
		}
		if out == "-" {
			fmt.Fprint(cmd.OutOrStdout(), chart.Render(records, chart.Options{Now: now(), Title: cfg.Chart.Title}))
			return nil
		}
		if err := chart.WriteFile(out, chart.Render(records, chart.Options{Now: now(), Title: cfg.Chart.Title})); err != nil {
			return err
		}
		logger.Info("chart written", "path", out, "days", len(records))
		fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s (%s)\n", out, plural(len(records), "day", "days"))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output path, - for stdout (default chart.output)")
}
