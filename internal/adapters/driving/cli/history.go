package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
	metricsName  string
	metricsLimit int
	evalJSON     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered questions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show recorded pipeline metrics",
	Long: `Lists timings and counts recorded by index builds, retrievals and answers,
newest first. Filter by name with --name, for example:
  docintel metrics --name answer_seconds`,
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

var evalCmd = &cobra.Command{
	Use:   "eval [questions.yaml]",
	Short: "Run evaluation questions or list past results",
	Long: `Runs every question in a YAML file through the answering pipeline and
records whether the answer mentions the expected topic.

File format:
  - query: What is the refund window?
    expected_topic: thirty days

Without a file, previously recorded results are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of interactions")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	metricsCmd.Flags().StringVar(&metricsName, "name", "", "only metrics with this name")
	metricsCmd.Flags().IntVarP(&metricsLimit, "limit", "n", 20, "number of metrics")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(evalCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errNotConfigured("history")
	}

	interactions, err := historyService.RecentInteractions(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if historyJSON {
		return outputJSON(cmd, interactions)
	}
	if len(interactions) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for _, in := range interactions {
		cmd.Printf("#%d  %s  %s  (%s)\n", in.ID, in.Timestamp.Local().Format("2006-01-02 15:04:05"),
			in.Status, in.ExecutionTime.Round(time.Millisecond))
		cmd.Printf("  Q: %s\n", in.Question)
		cmd.Printf("  A: %s\n", snippet(in.Answer, 300))
		if len(in.Citations) > 0 {
			cmd.Printf("  Sources: %s\n", citationList(in.Citations))
		}
		cmd.Println()
	}
	return nil
}

// citationList names each cited document page once, in citation order.
func citationList(results []domain.RetrievalResult) string {
	seen := make(map[string]bool, len(results))
	refs := make([]string, 0, len(results))
	for _, r := range results {
		ref := fmt.Sprintf("%s p.%d", r.Document, r.Page)
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return strings.Join(refs, ", ")
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errNotConfigured("history")
	}

	metrics, err := historyService.Metrics(cmd.Context(), metricsName, metricsLimit)
	if err != nil {
		return fmt.Errorf("reading metrics: %w", err)
	}
	if len(metrics) == 0 {
		cmd.Println("No metrics recorded.")
		return nil
	}

	for _, m := range metrics {
		cmd.Printf("%s  %-20s %12.4f%s\n", m.Timestamp.Local().Format("2006-01-02 15:04:05"),
			m.Name, m.Value, formatMetadata(m.Metadata))
	}
	return nil
}

func formatMetadata(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, meta[k]))
	}
	return "  " + strings.Join(parts, " ")
}

func runEval(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errNotConfigured("history")
	}

	if len(args) == 0 {
		results, err := historyService.TestQueries(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading evaluation results: %w", err)
		}
		return outputEval(cmd, results)
	}

	cases, err := loadEvalCases(args[0])
	if err != nil {
		return err
	}

	results, err := historyService.Evaluate(cmd.Context(), cases)
	if outErr := outputEval(cmd, results); outErr != nil {
		return outErr
	}
	if err != nil {
		return fmt.Errorf("evaluation stopped: %w", err)
	}
	return nil
}

func loadEvalCases(path string) ([]domain.EvalCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cases []domain.EvalCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidInput, path, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("%w: %s contains no questions", domain.ErrInvalidInput, path)
	}
	return cases, nil
}

func outputEval(cmd *cobra.Command, results []domain.TestQuery) error {
	if evalJSON {
		return outputJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No evaluation results.")
		return nil
	}

	passed := 0
	for _, r := range results {
		mark := "FAIL"
		if r.Success {
			mark = "PASS"
			passed++
		}
		cmd.Printf("[%s] %s (expected: %s)\n", mark, r.Query, r.ExpectedTopic)
	}
	cmd.Printf("\n%d/%d passed\n", passed, len(results))
	return nil
}
