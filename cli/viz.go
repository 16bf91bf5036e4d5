// ABOUTME: Visualization CLI commands
// ABOUTME: Renders the deal pipeline graph as DOT, SVG, or PNG
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/torque/viz"
)

// VizPipelineCommand generates a deal pipeline graph.
func VizPipelineCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("viz pipeline", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	format := fs.String("format", "dot", "Output format: dot, svg, or png")
	all := fs.Bool("all", false, "Include every owner's deals")
	_ = fs.Parse(args)

	user, err := app.requireUser()
	if err != nil {
		return err
	}

	f, err := viz.ParseFormat(*format)
	if err != nil {
		return err
	}

	owner := user.UID
	if *all {
		owner = ""
	}

	w := app.Out
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *output, err)
		}
		defer func() { _ = file.Close() }()
		w = file
	}

	stats, err := viz.NewGraphGenerator(app.DB).RenderPipeline(ctx, owner, f, w)
	if err != nil {
		return err
	}

	if *output != "" {
		_, _ = fmt.Fprintf(app.Out, "✓ Wrote %s (%d nodes, %d edges)\n", *output, stats.Nodes, stats.Edges)
	}
	return nil
}
