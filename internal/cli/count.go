package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lazypower/texprogress/internal/scan"
	"github.com/lazypower/texprogress/internal/texcount"
)

var countCmd = &cobra.Command{
	Use:   "count [path...]",
	Short: "Count words in local files or directories without recording",
	Long: `Count words in local .tex files. Directories are walked with the
configured include and exclude patterns; files are counted as given.

Examples:
  texprogress count                      # the current directory
  texprogress count main.tex chapters/
  texprogress count --show-text intro.tex  # print what the counter sees`,
	RunE: runCount,
}

func init() {
	countCmd.Flags().Bool("show-text", false, "print the text left after markup is stripped")
}

func runCount(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	w := cmd.OutOrStdout()

	showText, _ := cmd.Flags().GetBool("show-text")
	if showText {
		for _, p := range args {
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, texcount.DefaultPipeline.Apply(texcount.Decode(data)))
		}
		return nil
	}

	scanner, err := scan.New(cfg.Scan.Include, cfg.Scan.Exclude, logger)
	if err != nil {
		return err
	}

	var rows [][]string
	total, files := 0, 0
	for _, p := range args {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			n, err := texcount.CountFile(p)
			if err != nil {
				return err
			}
			rows = append(rows, []string{p, humanize.Bytes(uint64(info.Size())), words(n)})
			total += n
			files++
			continue
		}

		res, err := scanner.Scan(cmd.Context(), p)
		if err != nil {
			return err
		}
		for _, f := range res.Files {
			rows = append(rows, []string{filepath.Join(p, filepath.FromSlash(f.Path)), humanize.Bytes(uint64(f.Size)), words(f.Words)})
		}
		total += res.Words
		files += len(res.Files)
	}

	if err := renderTable(w, []string{"File", "Size", "Words"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s %s words in %s\n", bold("Total:"), words(total), plural(files, "file", "files"))
	return nil
}
