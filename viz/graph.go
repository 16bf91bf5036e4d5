// ABOUTME: GraphViz rendering of a deal pipeline
// ABOUTME: Stage nodes in pipeline order with each owner's deals hanging off them
package viz

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/models"
)

type GraphGenerator struct {
	db *sql.DB
}

func NewGraphGenerator(database *sql.DB) *GraphGenerator {
	return &GraphGenerator{db: database}
}

// ParseFormat maps a --format flag value to a graphviz format.
func ParseFormat(name string) (graphviz.Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dot":
		return graphviz.XDOT, nil
	case "svg":
		return graphviz.SVG, nil
	case "png":
		return graphviz.PNG, nil
	}
	return "", fmt.Errorf("unknown graph format %q (valid: dot, svg, png)", name)
}

// GraphStats counts what a rendered graph contains.
type GraphStats struct {
	Nodes int
	Edges int
}

// GeneratePipelineGraph returns the DOT source of ownerID's pipeline. An empty
// ownerID covers every owner.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context, ownerID string) (string, GraphStats, error) {
	var buf bytes.Buffer
	stats, err := g.RenderPipeline(ctx, ownerID, graphviz.XDOT, &buf)
	if err != nil {
		return "", GraphStats{}, err
	}
	return buf.String(), stats, nil
}

// RenderPipeline lays out the pipeline and writes it to w in format.
func (g *GraphGenerator) RenderPipeline(ctx context.Context, ownerID string, format graphviz.Format, w io.Writer) (GraphStats, error) {
	var stats GraphStats

	totals, err := db.PipelineSummary(g.db, ownerID)
	if err != nil {
		return stats, err
	}

	deals, err := db.FindDeals(g.db, ownerID, "", 10000)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch deals: %w", err)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return stats, fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel("Deal Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	stageNodes := make(map[string]*cgraph.Node, len(totals))
	for _, t := range totals {
		node, err := graph.CreateNodeByName("stage_" + t.Stage)
		if err != nil {
			return stats, fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%d deals\n%s", t.Stage, t.Count, formatAmount(t.Amount)))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor(stageColor(t.Stage))
		stageNodes[t.Stage] = node
		stats.Nodes++
	}

	for _, step := range pipelineSteps {
		from, to := stageNodes[step[0]], stageNodes[step[1]]
		if _, err := graph.CreateEdgeByName(step[0]+"_"+step[1], from, to); err != nil {
			return stats, fmt.Errorf("failed to create stage edge: %w", err)
		}
		stats.Edges++
	}

	for _, deal := range deals {
		stage, ok := stageNodes[deal.Stage]
		if !ok {
			continue
		}
		node, err := graph.CreateNodeByName("deal_" + deal.ID.String()[:8])
		if err != nil {
			return stats, fmt.Errorf("failed to create deal node: %w", err)
		}
		label := deal.Title
		if deal.Company != "" {
			label += "\n" + deal.Company
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", label, formatAmount(deal.Amount)))
		node.SetShape("ellipse")

		edge, err := graph.CreateEdgeByName("in_"+deal.ID.String()[:8], node, stage)
		if err != nil {
			return stats, fmt.Errorf("failed to create deal edge: %w", err)
		}
		edge.SetStyle("dashed")
		stats.Nodes++
		stats.Edges++
	}

	if err := gv.Render(ctx, graph, format, w); err != nil {
		return stats, fmt.Errorf("failed to render graph: %w", err)
	}
	return stats, nil
}

// pipelineSteps are the forward moves between stages.
var pipelineSteps = [][2]string{
	{models.StageProspecting, models.StageQualification},
	{models.StageQualification, models.StageProposal},
	{models.StageProposal, models.StageNegotiation},
	{models.StageNegotiation, models.StageClosedWon},
	{models.StageNegotiation, models.StageClosedLost},
}

func stageColor(stage string) string {
	switch stage {
	case models.StageClosedWon:
		return "palegreen"
	case models.StageClosedLost:
		return "lightpink"
	}
	return "lightblue"
}

// formatAmount renders cents as whole thousands, e.g. 4800000 as "$48K".
func formatAmount(cents int64) string {
	return fmt.Sprintf("$%dK", cents/100000)
}
