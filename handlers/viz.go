// ABOUTME: GraphViz visualization MCP handler
// ABOUTME: Provides the pipeline_graph tool for agents
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	db       *sql.DB
	provider auth.Provider
}

func NewVizHandlers(database *sql.DB, provider auth.Provider) *VizHandlers {
	return &VizHandlers{db: database, provider: provider}
}

type PipelineGraphInput struct {
	AllOwners bool `json:"all_owners,omitempty" jsonschema:"Include every owner's deals instead of only the signed-in user's"`
}

type PipelineGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) PipelineGraph(ctx context.Context, request *mcp.CallToolRequest, input PipelineGraphInput) (*mcp.CallToolResult, PipelineGraphOutput, error) {
	user, err := auth.RequireUser(h.provider)
	if err != nil {
		return nil, PipelineGraphOutput{}, err
	}

	owner := user.UID
	if input.AllOwners {
		owner = ""
	}

	dot, stats, err := viz.NewGraphGenerator(h.db).GeneratePipelineGraph(ctx, owner)
	if err != nil {
		return nil, PipelineGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, PipelineGraphOutput{
		DOTSource: dot,
		NodeCount: stats.Nodes,
		EdgeCount: stats.Edges,
	}, nil
}
