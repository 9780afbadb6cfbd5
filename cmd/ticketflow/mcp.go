package main

import (
	"context"
	"fmt"

	"github.com/aretw0/ticketflow/internal/cli"
	mcpAdapter "github.com/aretw0/ticketflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the automaton as MCP tools",
	Long: `Starts a Model Context Protocol server with the step, run, reset,
random_trail, describe and graph tools.

Transports:
  stdio  JSON-RPC over Stdin/Stdout (default)
  sse    HTTP server-sent events on --port`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			srv := mcpAdapter.NewServer(rt.Engine, mcpAdapter.WithLogger(rt.Logger))

			switch cfg.MCP.Transport {
			case "sse":
				return srv.ServeSSE(ctx, cfg.MCP.Port)
			case "stdio":
				rt.Logger.Info("MCP server listening (stdio)")
				return srv.ServeStdio()
			default:
				return fmt.Errorf("unknown transport %q", cfg.MCP.Transport)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 8081, "Port of the SSE transport")
	bindFlag(mcpCmd, "transport", "mcp.transport")
	bindFlag(mcpCmd, "port", "mcp.port")
}
