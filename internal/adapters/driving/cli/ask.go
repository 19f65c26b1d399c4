package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from your documents",
	Long: `Retrieves the passages most relevant to the question and asks the
configured LLM to answer from them. The sources are listed under the answer.

When nothing has been indexed a fixed no-context reply is printed instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errNotConfigured("answer")
	}

	answer, err := answerService.Answer(cmd.Context(), strings.Join(args, " "))
	if err != nil && !errors.Is(err, domain.ErrGenerationService) {
		return fmt.Errorf("answering failed: %w", err)
	}

	// A generation failure still carries a labelled answer and its sources.
	if askJSON {
		if jsonErr := outputJSON(cmd, answer); jsonErr != nil {
			return jsonErr
		}
		return err
	}

	cmd.Println(answer.Text)
	if len(answer.Results) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		// Results arrive best first, so each page keeps its highest score.
		seen := make(map[string]bool, len(answer.Results))
		for _, r := range answer.Results {
			ref := fmt.Sprintf("%s p.%d", r.Document, r.Page)
			if seen[ref] {
				continue
			}
			seen[ref] = true
			cmd.Printf("  [%d] %s (%.3f)\n", len(seen), ref, r.Score)
		}
	}
	return err
}
