package main

import (
	"github.com/spf13/cobra"

	"github.com/NotMyFault/cloudify-plugin/internal/cli"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the transform as MCP tools: transform builds an inputs document from
outputs and mapping text, validate checks a mapping.

Supported transports:
- stdio (default): JSON-RPC on standard input and output. Logs go to stderr.
- sse: Server-Sent Events over HTTP on --addr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		ctx, cancel := cli.WithSignals(cmd.Context())
		defer cancel()

		return cli.RunMCP(ctx, transport, addr, logger, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol: 'stdio' or 'sse'")
	mcpCmd.Flags().StringP("addr", "a", ":8081", "Address to listen on (sse only)")
}
