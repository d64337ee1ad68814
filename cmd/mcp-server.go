package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ca-srg/cyberrag/internal/mcpserver"
)

var (
	mcpServerHost string
	mcpServerPort int
)

var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Start an MCP (Model Context Protocol) server exposing the answer tool",
	Long: `
Start an MCP server over streamable HTTP. It provides one tool, "answer_query",
which answers a cybersecurity question from live official sources.

Examples:
  cyberrag mcp-server
  cyberrag mcp-server --host 0.0.0.0 --port 9100
`,
	RunE: runMCPServer,
}

func init() {
	addListenFlags(mcpServerCmd.Flags(), &mcpServerHost, &mcpServerPort, "MCP_SERVER")
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, "mcp-server")
	if err != nil {
		return err
	}
	defer a.Close()

	applyListenFlags(&a.cfg.MCPServerHost, &a.cfg.MCPServerPort, mcpServerHost, mcpServerPort)

	srv := mcpserver.NewServer(a.service, a.cfg, Version)
	a.logger.Printf("event=mcp_start addr=%s tool=answer_query", srv.Addr())
	return srv.Run(ctx)
}
