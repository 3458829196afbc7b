// Package cli defines the tracktray command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tracktray/internal/app"
)

var (
	configPath  string
	prefsPath   string
	historyPath string
	pollSeconds int
	demoMode    bool
)

var rootCmd = &cobra.Command{
	Use:   "tracktray",
	Short: "Track work time against a remote time-entry service",
	Long: `tracktray keeps your hours flowing to a remote time-entry service and
periodically asks whether you are still working, auto-stopping when you
don't answer. Running it with no subcommand starts the tracker.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return app.Run(ctx, app.Options{
			ConfigPath:  configPath,
			PrefsPath:   prefsPath,
			HistoryPath: historyPath,
			PollEvery:   pollSeconds,
			Demo:        demoMode,
		})
	},
}

// Execute runs the command tree and exits nonzero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tracktray: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/tracktray/config.toml)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", "", "history database (default ~/.local/share/tracktray/history.db)")
	rootCmd.Flags().StringVar(&prefsPath, "prefs", "", "prefs file (default ~/.config/tracktray/prefs.toml)")
	rootCmd.Flags().IntVar(&pollSeconds, "poll", 0, "background refresh interval in seconds (default 60)")
	rootCmd.Flags().BoolVar(&demoMode, "demo", false, "run against a built-in in-memory service")
}
