package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsift/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the corpus to AI assistants",
	Long:  `Serve the document corpus over the Model Context Protocol (MCP).`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search and document tools over MCP",
	Long: `Serve the indexed corpus to an MCP client. The client can search, open
documents, list categories and ask questions about a single document. Asking
requires AI to be enabled (docsift settings set ai.mode ...).

The server speaks JSON-RPC over stdio unless --listen is given, in which case
it serves the streamable HTTP transport at /mcp on that address.

Examples:
  docsift mcp serve
  docsift mcp serve --listen 127.0.0.1:8090

Client configuration:
  {
    "mcpServers": {
      "docsift": {
        "command": "/path/to/docsift",
        "args": ["mcp", "serve", "--data-dir", "/path/to/data"]
      }
    }
  }`,
	RunE: runMCPServe,
}

var mcpListen string

func init() {
	mcpServeCmd.Flags().StringVarP(&mcpListen, "listen", "l", "", "serve HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Search:   searchService,
		Document: documentService,
	})
	if err != nil {
		return err
	}

	if mcpListen == "" {
		return server.Run(cmd.Context())
	}
	cmd.Printf("MCP server listening on http://%s%s\n", mcpListen, mcp.Endpoint)
	return server.RunHTTP(cmd.Context(), mcpListen)
}
