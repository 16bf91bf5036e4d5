// ABOUTME: Dashboard CLI command
// ABOUTME: Opens the TUI on a terminal and prints the ASCII dashboard otherwise
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/torque/dashboard"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/logging"
	"github.com/harperreed/torque/tui"
	"github.com/harperreed/torque/viz"
)

func DashboardCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	search := fs.String("search", "", "Initial search text")
	ascii := fs.Bool("ascii", false, "Print the ASCII dashboard even on a terminal")
	offline := fs.Bool("offline", false, "Skip the initial directory sync")
	_ = fs.Parse(args)

	out, isFile := app.Out.(*os.File)
	if !*ascii && isFile && isTerminal(out) {
		// The TUI owns the screen, so log lines would corrupt it.
		return tui.Run(ctx, tui.Options{
			Provider:      app.Auth,
			Session:       app.Session,
			Directory:     app.Config.Directory,
			Logger:        logging.Discard(),
			InitialSearch: *search,
		})
	}

	user, err := app.requireUser()
	if err != nil {
		return err
	}

	if !*offline {
		if err := app.syncConfigured(ctx); err != nil {
			// The dashboard shows the failure.
			app.Logger.Debug("dashboard sync failed", "err", err)
		}
	}

	pipeline, err := db.PipelineSummary(app.DB, user.UID)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprint(app.Out, viz.RenderDashboard(dashboard.Build(app.Session.Snapshot(), *search), pipeline))
	return nil
}
