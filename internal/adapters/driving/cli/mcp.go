package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikirec/internal/adapters/driving/mcp"
	"github.com/custodia-labs/wikirec/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can ask for
related articles, look up articles and manage reading history.

By default, the server communicates over stdio using JSON-RPC.

Use --port to start an HTTP server instead, which also serves Prometheus
metrics on /metrics.

Examples:
  # Stdio mode (default)
  wikirec mcp serve

  # HTTP mode
  wikirec mcp serve --port 8080

While serving, the catalog is rebuilt when the dataset files change.`,
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

	ctx := commandContext(cmd)
	if err := requireServices(ctx); err != nil {
		if historyBootstrap == nil {
			return err
		}
		if herr := requireHistory(ctx); herr != nil {
			return errors.Join(err, herr)
		}
		logger.Warn("catalog unavailable, serving history tools only: %v", err)
	}

	ports := &mcp.Ports{
		Recommend: recommendationService,
		Explorer:  explorerService,
		History:   historyService,
		Catalog:   catalogService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	startWatch(ctx)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
