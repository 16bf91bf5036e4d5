// ABOUTME: Contact CLI commands
// ABOUTME: Syncs the remote directory and lists or summarizes contacts
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/torque/dashboard"
	"github.com/harperreed/torque/sync"
)

// ContactsSyncCommand fetches the directory and reports what came back.
func ContactsSyncCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("contacts sync", flag.ExitOnError)
	url := fs.String("url", "", "Contact directory base URL (default: TORQUE_DIRECTORY_URL)")
	key := fs.String("key", "", "Contact directory API key (default: TORQUE_DIRECTORY_API_KEY, configured URL only)")
	_ = fs.Parse(args)

	if _, err := app.requireUser(); err != nil {
		return err
	}

	baseURL, apiKey := sync.Target(app.Config.Directory, *url, *key)
	contacts, err := app.Session.Sync(ctx, baseURL, apiKey)
	if err != nil {
		return err
	}

	state := app.Session.Snapshot()
	_, _ = fmt.Fprintf(app.Out, "✓ Synced %d contacts from %s\n", len(contacts), state.BaseURL)
	return nil
}

// ContactsListCommand lists contacts matching --search.
func ContactsListCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("contacts list", flag.ExitOnError)
	search := fs.String("search", "", "Filter by name, email, company, or address")
	asJSON := fs.Bool("json", false, "Print JSON")
	offline := fs.Bool("offline", false, "Skip the directory sync and show demo contacts")
	_ = fs.Parse(args)

	if _, err := app.requireUser(); err != nil {
		return err
	}

	if !*offline {
		if err := app.syncConfigured(ctx); err != nil {
			return err
		}
	}

	view := dashboard.Build(app.Session.Snapshot(), *search)
	if *asJSON {
		enc := json.NewEncoder(app.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(view.Rows)
	}

	if view.Demo {
		_, _ = fmt.Fprintln(app.Out, "(demo contacts)")
	}
	if len(view.Rows) == 0 {
		_, _ = fmt.Fprintln(app.Out, "No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tCOMPANY\tSTATUS")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t-------\t------")
	for _, row := range view.Rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Name, row.Email, row.Phone, row.Company, row.Status)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(app.Out, "\nShowing %d of %d contacts\n", len(view.Rows), view.Stats.Total)
	return nil
}

// ContactsStatsCommand prints totals over every contact.
func ContactsStatsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("contacts stats", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print JSON")
	offline := fs.Bool("offline", false, "Skip the directory sync and show demo contacts")
	_ = fs.Parse(args)

	if _, err := app.requireUser(); err != nil {
		return err
	}

	if !*offline {
		if err := app.syncConfigured(ctx); err != nil {
			return err
		}
	}

	view := dashboard.Build(app.Session.Snapshot(), "")
	if *asJSON {
		return json.NewEncoder(app.Out).Encode(view.Stats)
	}

	_, _ = fmt.Fprintf(app.Out, "Total:     %d\n", view.Stats.Total)
	_, _ = fmt.Fprintf(app.Out, "Active:    %d\n", view.Stats.Active)
	_, _ = fmt.Fprintf(app.Out, "Prospects: %d\n", view.Stats.Prospects)
	if view.Demo {
		_, _ = fmt.Fprintln(app.Out, "(demo contacts)")
	}
	return nil
}
