// ABOUTME: MCP resource handlers exposing dashboard data
// ABOUTME: Provides read-only JSON views of contacts, the pipeline, and sync history via URI
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/dashboard"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/models"
	"github.com/harperreed/torque/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ResourceScheme prefixes every resource URI.
const ResourceScheme = "torque://"

// Resources lists what ReadResource serves.
var Resources = []*mcp.Resource{
	{URI: ResourceScheme + "dashboard", Name: "dashboard", Description: "Contact dashboard view with stats and rows", MIMEType: "application/json"},
	{URI: ResourceScheme + "pipeline", Name: "pipeline", Description: "Deal totals per stage for the signed-in user", MIMEType: "application/json"},
	{URI: ResourceScheme + "history", Name: "history", Description: "Recent contact directory sync runs", MIMEType: "application/json"},
}

type ResourceHandlers struct {
	db       *sql.DB
	session  *sync.Session
	provider auth.Provider
}

func NewResourceHandlers(database *sql.DB, session *sync.Session, provider auth.Provider) *ResourceHandlers {
	return &ResourceHandlers{db: database, session: session, provider: provider}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, ResourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", ResourceScheme)
	}

	user, err := auth.RequireUser(h.provider)
	if err != nil {
		return nil, err
	}

	var payload interface{}
	switch strings.TrimPrefix(uri, ResourceScheme) {
	case "dashboard":
		payload = dashboard.Build(h.session.Snapshot(), "")

	case "pipeline":
		payload, err = db.PipelineSummary(h.db, user.UID)

	case "history":
		payload, err = db.ListSyncRuns(h.db, models.ContactsService, 0)

	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
