// Package cli provides the docintel command line interface.
package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// WatchFunc creates a watcher over the documents directory. The returned
// close function releases the underlying file watch.
type WatchFunc func(debounce time.Duration, onResult func(domain.BuildReport, error)) (driving.Watcher, func(), error)

// Services holds the driving ports the commands use.
// Pipeline services are nil when the embedding provider could not be set up;
// PipelineErr then says why.
type Services struct {
	Index     driving.IndexService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	History   driving.HistoryService
	Settings  driving.SettingsService
	Watch     WatchFunc

	// TopK is the configured number of retrieved chunks.
	TopK int

	PipelineErr error
}

// Options are the global flags handed to the initializer.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Initializer builds the services once flags are parsed.
// The returned function releases them after the command finishes.
type Initializer func(opts Options) (*Services, func(), error)

var (
	indexService     driving.IndexService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	historyService   driving.HistoryService
	settingsService  driving.SettingsService
	watchFunc        WatchFunc
	defaultTopK      = domain.DefaultTopK
	pipelineErr      error

	initializer Initializer
	cleanup     func()

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "docintel",
	Short: "Question answering over your local documents",
	Long: `docintel indexes a directory of text and PDF documents and answers
questions grounded on the most relevant passages.

Build the index, then ask:
  docintel index build
  docintel ask "What does the contract say about termination?"`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (TOML or YAML)")
}

// SetInitializer registers the function that builds services before a command runs.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetServices installs the driving ports used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	indexService = s.Index
	retrievalService = s.Retrieval
	answerService = s.Answer
	historyService = s.History
	settingsService = s.Settings
	watchFunc = s.Watch
	pipelineErr = s.PipelineErr
	defaultTopK = domain.DefaultTopK
	if s.TopK > 0 {
		defaultTopK = s.TopK
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if initializer == nil || cmd == versionCmd {
		return nil
	}

	s, release, err := initializer(Options{ConfigPath: configPath, Verbose: verbose})
	if err != nil {
		return err
	}
	SetServices(s)
	cleanup = release
	return nil
}

// Execute runs the root command and releases services afterwards.
func Execute() error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.Execute()
}

// errNotConfigured explains a missing service, preferring the setup failure.
func errNotConfigured(name string) error {
	if pipelineErr != nil {
		return pipelineErr
	}
	return errors.New(name + " service not configured")
}
