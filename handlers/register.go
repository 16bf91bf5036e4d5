// ABOUTME: MCP server assembly
// ABOUTME: Registers every tool, resource, and prompt on a server
package handlers

import (
	"database/sql"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Deps are the services the handlers read from.
type Deps struct {
	DB        *sql.DB
	Session   *sync.Session
	Provider  auth.Provider
	Directory config.DirectoryConfig
}

// NewServer builds an MCP server exposing the dashboard.
func NewServer(deps Deps, version string) *mcp.Server {
	contactHandlers := NewContactHandlers(deps.Session, deps.Provider, deps.Directory)
	dealHandlers := NewDealHandlers(deps.DB, deps.Provider)
	historyHandlers := NewHistoryHandlers(deps.DB, deps.Provider)
	vizHandlers := NewVizHandlers(deps.DB, deps.Provider)
	resourceHandlers := NewResourceHandlers(deps.DB, deps.Session, deps.Provider)
	promptHandlers := NewPromptHandlers(deps.DB, deps.Session, deps.Provider)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "torque",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_contacts",
		Description: "Fetch contacts from the remote contact directory, replacing the current list",
	}, contactHandlers.SyncContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search synced contacts by name, email, company, or address",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "contact_stats",
		Description: "Report contact totals and the sync status",
	}, contactHandlers.ContactStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_deals",
		Description: "List the signed-in user's deals, optionally by stage",
	}, dealHandlers.ListDeals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_history",
		Description: "List recent contact directory sync attempts",
	}, historyHandlers.SyncHistory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_graph",
		Description: "Render the deal pipeline as GraphViz DOT",
	}, vizHandlers.PipelineGraph)

	for _, r := range Resources {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	for _, p := range Prompts {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}
