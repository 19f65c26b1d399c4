package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and inspect the vector index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the index from the documents directory",
	Long: `Extracts every supported document, splits pages into overlapping word
windows, embeds each chunk and replaces the persisted index.

Documents that fail to extract are reported and skipped. The previous index
is kept when the build fails.`,
	Args: cobra.NoArgs,
	RunE: runIndexBuild,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted index",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func init() {
	indexStatusCmd.Flags().BoolVar(&indexJSON, "json", false, "output as JSON")
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	report, err := indexService.Build(cmd.Context())
	printDocumentReports(cmd, report.Documents)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	cmd.Println()
	cmd.Printf("Indexed %d chunks from %d documents in %s\n",
		report.Info.Count, report.Info.Documents, report.Duration.Round(time.Millisecond))
	if failed := report.Failures(); len(failed) > 0 {
		cmd.Printf("%d documents could not be read\n", len(failed))
	}
	return nil
}

func printDocumentReports(cmd *cobra.Command, reports []domain.DocumentReport) {
	for _, d := range reports {
		if d.Failed() {
			cmd.Printf("  ✗ %s: %v\n", d.Name, d.Err)
			continue
		}
		cmd.Printf("  ✓ %s: %d pages, %d chunks\n", d.Name, d.Pages, d.Chunks)
	}
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	info, err := indexService.Status(cmd.Context())
	if errors.Is(err, domain.ErrIndexMissing) {
		cmd.Println("No index built yet. Run 'docintel index build'.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}

	if indexJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal index info: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Build:      %s\n", info.BuildID)
	cmd.Printf("Built at:   %s\n", info.BuiltAt.Local().Format(time.RFC3339))
	cmd.Printf("Model:      %s\n", info.Model)
	cmd.Printf("Dimension:  %d\n", info.Dimension)
	cmd.Printf("Chunks:     %d\n", info.Count)
	cmd.Printf("Documents:  %d\n", info.Documents)
	return nil
}
