package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

var (
	watchDebounce  time.Duration
	watchNoInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the index whenever documents change",
	Long: `Watches the documents directory and rebuilds the index once changes
settle for the debounce interval. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before rebuilding")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "skip the rebuild at startup")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if watchFunc == nil {
		return errNotConfigured("watch")
	}

	watcher, closeWatch, err := watchFunc(watchDebounce, func(report domain.BuildReport, err error) {
		stamp := time.Now().Format("15:04:05")
		if err != nil {
			cmd.Printf("[%s] rebuild failed: %v\n", stamp, err)
			return
		}
		cmd.Printf("[%s] indexed %d chunks from %d documents in %s\n", stamp,
			report.Info.Count, report.Info.Documents, report.Duration.Round(time.Millisecond))
		for _, d := range report.Failures() {
			cmd.Printf("  ✗ %s: %v\n", d.Name, d.Err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer closeWatch()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	if err := watcher.Start(ctx, !watchNoInitial); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watcher stopped: %w", err)
	}
	return nil
}
