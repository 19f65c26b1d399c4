package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can retrieve
passages from your documents and ask grounded questions.

Tools:
  retrieve   top-k passages for a query
  ask        grounded answer with sources (needs a configured LLM)

Resources:
  docintel://index     the loaded index build
  docintel://history   recent questions and answers

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead, for example to test with MCP Inspector.

Examples:
  docintel mcp serve
  docintel mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}

	ports := &mcp.Ports{
		Retrieval: retrievalService,
		Answer:    answerService,
		Index:     indexService,
		History:   historyService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
