// ABOUTME: Deal CLI commands
// ABOUTME: Lists, adds, moves, and seeds the signed-in user's deals
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/models"
)

// DealsListCommand lists the signed-in user's deals.
func DealsListCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("deals list", flag.ExitOnError)
	stage := fs.String("stage", "", "Filter by stage")
	asJSON := fs.Bool("json", false, "Print JSON")
	_ = fs.Parse(args)

	user, err := app.requireUser()
	if err != nil {
		return err
	}

	deals := []models.Deal{}
	for _, deal := range db.GetDealsForUser(ctx, app.DB, user.UID) {
		if *stage == "" || deal.Stage == *stage {
			deals = append(deals, deal)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(app.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(deals)
	}

	if len(deals) == 0 {
		_, _ = fmt.Fprintln(app.Out, "No deals found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tCOMPANY\tAMOUNT\tSTAGE\tID")
	_, _ = fmt.Fprintln(w, "-----\t-------\t------\t-----\t--")

	var total int64
	for _, deal := range deals {
		company := deal.Company
		if company == "" {
			company = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t$%.2f %s\t%s\t%s\n",
			deal.Title, company, float64(deal.Amount)/100.0, deal.Currency, deal.Stage, deal.ID.String()[:8])
		total += deal.Amount
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(app.Out, "\n%d deals, $%.2f total\n", len(deals), float64(total)/100.0)
	return nil
}

// DealsAddCommand creates a deal owned by the signed-in user.
func DealsAddCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("deals add", flag.ExitOnError)
	title := fs.String("title", "", "Deal title (required)")
	company := fs.String("company", "", "Company name")
	amount := fs.Int64("amount", 0, "Deal amount in cents")
	currency := fs.String("currency", "USD", "Currency code")
	stage := fs.String("stage", models.StageProspecting, "Stage (prospecting, qualification, proposal, negotiation, closed_won, closed_lost)")
	_ = fs.Parse(args)

	user, err := app.requireUser()
	if err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	deal := &models.Deal{
		OwnerID:  user.UID,
		Title:    *title,
		Company:  *company,
		Amount:   *amount,
		Currency: *currency,
		Stage:    *stage,
	}
	if err := db.CreateDeal(app.DB, deal); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Deal created: %s (ID: %s)\n", deal.Title, deal.ID)
	_, _ = fmt.Fprintf(app.Out, "  Amount: $%.2f %s\n", float64(deal.Amount)/100.0, deal.Currency)
	_, _ = fmt.Fprintf(app.Out, "  Stage: %s\n", deal.Stage)
	return nil
}

// DealsMoveCommand moves one of the user's deals to another stage.
func DealsMoveCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("deals move", flag.ExitOnError)
	stage := fs.String("stage", "", "New stage (required)")
	_ = fs.Parse(args)

	user, err := app.requireUser()
	if err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("deal ID required")
	}
	if *stage == "" {
		return fmt.Errorf("--stage is required")
	}

	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid deal ID: %w", err)
	}

	deal, err := db.GetDeal(app.DB, id)
	if err != nil {
		return err
	}
	if deal == nil || deal.OwnerID != user.UID {
		return fmt.Errorf("deal not found: %s", id)
	}

	if err := db.UpdateDealStage(app.DB, id, *stage); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(app.Out, "✓ %s moved from %s to %s\n", deal.Title, deal.Stage, *stage)
	return nil
}

// DealsSeedCommand loads the demo pipeline for the signed-in user.
func DealsSeedCommand(ctx context.Context, app *App, args []string) error {
	user, err := app.requireUser()
	if err != nil {
		return err
	}

	created, err := db.SeedSampleDeals(app.DB, user.UID)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Seeded %d sample deals for %s\n", len(created), user.Email)
	return nil
}
