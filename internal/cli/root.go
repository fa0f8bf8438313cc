package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/texprogress/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  = slog.Default()

	// now is the only wall-clock read in the program.
	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "texprogress",
	Short: "Track LaTeX writing progress across your repositories",
	Long: `texprogress counts the words in every .tex file across your GitHub
repositories, keeps a rolling 30-day history of the daily total and renders
it as an SVG bar chart of day-over-day changes.

Example usage:
  texprogress update --render     # count, record today, redraw the chart
  texprogress count chapters/     # count local files without recording
  texprogress history             # show the stored series
  texprogress serve               # serve the live chart over HTTP`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.ErrOrStderr())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .texprogress.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig(stderr io.Writer) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger = newLogger(stderr, cfg.Logging, verbose)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"storage", cfg.Storage.Backend,
		"fetch", cfg.Fetch.Method,
		"include", cfg.Scan.Include,
	)
	return nil
}

func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
