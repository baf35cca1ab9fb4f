package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/creditrust-labs/crag-cli/internal/adapters/driven/index/watch"
	"github.com/creditrust-labs/crag-cli/internal/adapters/driving/mcp"
	"github.com/creditrust-labs/crag-cli/internal/logger"
)

var (
	mcpPort     int
	mcpIndexDir string
	mcpNoWatch  bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes 'ask' and 'search' tools over the complaint index.
By default it communicates over stdio using JSON-RPC and can be used
with Claude Desktop and other MCP-compatible AI assistants.

While running, the server watches the index directory and reloads the
pipeline when a rebuild replaces the bundle, so answers always come
from the latest index.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  crag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  crag mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "crag": {
        "command": "/path/to/crag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpIndexDir, "index-dir", defaultIndexDir(), "index bundle directory")
	mcpServeCmd.Flags().BoolVar(&mcpNoWatch, "no-watch", false, "disable index hot-reload")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	pipeline, err := newQueryPipeline(ctx, mcpIndexDir, 0)
	if err != nil {
		return err
	}

	// The reload goroutine swaps the active pipeline, so access to it is
	// serialised.
	var mu sync.Mutex
	defer func() {
		mu.Lock()
		pipeline.Close()
		mu.Unlock()
	}()

	server, err := mcp.NewServer(&mcp.Ports{
		Query:     pipeline.query,
		Retriever: pipeline.retriever,
	})
	if err != nil {
		return err
	}

	if !mcpNoWatch {
		watcher := watch.New(mcpIndexDir)
		go func() {
			err := watcher.Run(ctx, func() {
				replacement, err := newQueryPipeline(ctx, mcpIndexDir, 0)
				if err != nil {
					logger.Warn("index reload failed: %v", err)
					return
				}
				if err := server.UpdatePorts(&mcp.Ports{
					Query:     replacement.query,
					Retriever: replacement.retriever,
				}); err != nil {
					replacement.Close()
					logger.Warn("index reload failed: %v", err)
					return
				}
				mu.Lock()
				pipeline.Close()
				pipeline = replacement
				mu.Unlock()
				logger.Info("index reloaded from %s", mcpIndexDir)
			})
			if err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "index watcher stopped: %v\n", err)
			}
		}()
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
