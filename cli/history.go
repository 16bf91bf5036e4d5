// ABOUTME: Sync history CLI command
// ABOUTME: Prints recent contact directory sync runs
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/models"
)

func HistoryCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum runs")
	_ = fs.Parse(args)

	if _, err := app.requireUser(); err != nil {
		return err
	}

	state, err := db.GetSyncState(app.DB, models.ContactsService)
	if err != nil {
		return err
	}
	if state != nil {
		_, _ = fmt.Fprintf(app.Out, "Status: %s", state.Status)
		if state.LastSyncTime != nil {
			_, _ = fmt.Fprintf(app.Out, "  Last sync: %s (%d contacts)", state.LastSyncTime.Format("2006-01-02 15:04"), state.ContactCount)
		}
		_, _ = fmt.Fprintln(app.Out)
		if state.ErrorMessage != "" {
			_, _ = fmt.Fprintf(app.Out, "Last error: %s\n", state.ErrorMessage)
		}
		_, _ = fmt.Fprintln(app.Out)
	}

	runs, err := db.ListSyncRuns(app.DB, models.ContactsService, *limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(app.Out, "No sync runs yet")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STARTED\tSTATUS\tCONTACTS\tDURATION\tENDPOINT\tERROR")
	_, _ = fmt.Fprintln(w, "-------\t------\t--------\t--------\t--------\t-----")
	for _, run := range runs {
		errText := "-"
		if run.ErrorMessage != "" {
			errText = fmt.Sprintf("%s: %s", run.ErrorKind, run.ErrorMessage)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Status, run.ContactCount, run.Duration().Round(time.Millisecond), run.Endpoint, errText)
	}
	_ = w.Flush()
	return nil
}
