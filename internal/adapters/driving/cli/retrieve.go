package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

var (
	retrieveTopK int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the passages most relevant to a query",
	Long: `Embeds the query and returns the nearest indexed chunks with their
relevance scores, without calling the LLM.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of passages (default retrieval.top_k)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}

	topK := retrieveTopK
	if topK == 0 {
		topK = defaultTopK
	}

	results, err := retrievalService.Retrieve(cmd.Context(), strings.Join(args, " "), topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		return outputJSON(cmd, results)
	}
	outputPassages(cmd, results)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputPassages(cmd *cobra.Command, results []domain.RetrievalResult) {
	if len(results) == 0 {
		cmd.Println("No passages found.")
		return
	}

	for i, r := range results {
		cmd.Printf("  [%d] %s p.%d #%d (%.3f)\n", i+1, r.Document, r.Page, r.ChunkID, r.Score)
		cmd.Printf("      %s\n", snippet(r.Text, 200))
	}
}

// snippet shortens text to at most n runes.
func snippet(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n-3]) + "..."
}
