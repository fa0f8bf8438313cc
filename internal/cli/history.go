package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/texprogress/internal/series"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the stored daily totals and changes",
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
		deltas := series.Deltas(records)

		w := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if deltas == nil {
				deltas = []series.Delta{}
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(deltas)
		}

		if len(deltas) == 0 {
			fmt.Fprintln(w, "No history yet. Run 'texprogress update' first.")
			return nil
		}

		rows := make([][]string, 0, len(deltas))
		for _, d := range deltas {
			rows = append(rows, []string{d.Date, words(d.Total), formatDelta(d.Change)})
		}
		return renderTable(w, []string{"Date", "Words", "Change"}, rows)
	},
}

func init() {
	historyCmd.Flags().Bool("json", false, "output as JSON")
}
