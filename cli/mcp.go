// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/harperreed/torque/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, app *App, args []string) error {
	// stdout carries the protocol; logs go to stderr.
	app.Logger.Info("starting MCP server")

	server := handlers.NewServer(handlers.Deps{
		DB:        app.DB,
		Session:   app.Session,
		Provider:  app.Auth,
		Directory: app.Config.Directory,
	}, app.Version)

	return server.Run(ctx, &mcp.StdioTransport{})
}
