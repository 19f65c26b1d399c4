package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/logger"
)

// runApp starts the interactive app. Tests replace it.
var runApp = func(ctx context.Context, ports *tui.Ports) error {
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	return app.WithContext(ctx).Run()
}

var chatWatch bool

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Ask questions in an interactive terminal UI",
	Long: `Launch the interactive chat over the document index.

Controls:
  Enter     - Ask
  Tab       - Browse the sources of the last answer
  Ctrl+R    - History
  F1        - Toggle help
  Ctrl+C    - Quit

With --watch the index is rebuilt in the background when documents change.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatWatch, "watch", false, "rebuild the index when documents change")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if answerService == nil {
		return errNotConfigured("answer")
	}

	// The TUI owns the screen; log lines still reach the log file.
	console := logger.SetOutput(io.Discard)
	defer logger.SetOutput(console)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Watching is long-running alongside the TUI; failures are logged, not fatal.
	if chatWatch && watchFunc != nil {
		watcher, closeWatch, err := watchFunc(-1, func(report domain.BuildReport, err error) {
			if err != nil {
				logger.Warn("background rebuild failed: %v", err)
				return
			}
			logger.Info("background rebuild: %d chunks from %d documents", report.Info.Count, report.Info.Documents)
		})
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer closeWatch()

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			if err := watcher.Start(watchCtx, false); err != nil && watchCtx.Err() == nil {
				logger.Warn("watcher stopped: %v", err)
			}
		}()
		defer func() {
			if err := watcher.Stop(); err != nil {
				logger.Warn("watcher stop error: %v", err)
			}
		}()
	}

	ports := &tui.Ports{
		Answer:  answerService,
		History: historyService,
		Index:   indexService,
	}

	if err := runApp(ctx, ports); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
