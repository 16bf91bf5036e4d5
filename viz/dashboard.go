// ABOUTME: Terminal dashboard rendering
// ABOUTME: ASCII overview of contact stats, the contact table, and the deal pipeline
package viz

import (
	"fmt"
	"strings"

	"github.com/harperreed/torque/dashboard"
	"github.com/harperreed/torque/db"
)

// maxRows caps the contact table in the ASCII dashboard.
const maxRows = 20

// RenderDashboard draws the view and, when present, the pipeline totals.
func RenderDashboard(view dashboard.View, pipeline []db.StageTotal) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  TORQUE CONTACT DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("DIRECTORY\n")
	if view.BaseURL != "" {
		out.WriteString(fmt.Sprintf("  %s\n", view.BaseURL))
	}
	switch {
	case view.Error != "":
		out.WriteString(fmt.Sprintf("  ⚠️  %s\n", view.Error))
	case view.LastSync != nil:
		out.WriteString(fmt.Sprintf("  Last sync: %s\n", view.LastSync.Format("2006-01-02 15:04")))
	default:
		out.WriteString("  Never synced\n")
	}
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  ✅ %d active  🌱 %d prospects\n",
		view.Stats.Total, view.Stats.Active, view.Stats.Prospects))
	if view.Demo {
		out.WriteString("  (demo data: run a sync to see your contacts)\n")
	}
	out.WriteString("\n")

	out.WriteString("CONTACTS\n")
	renderRows(&out, view.Rows)

	if len(pipeline) > 0 {
		out.WriteString("\nPIPELINE OVERVIEW\n")
		renderPipeline(&out, pipeline)
	}

	return out.String()
}

func renderRows(out *strings.Builder, rows []dashboard.Row) {
	if len(rows) == 0 {
		out.WriteString("  No contacts match the search.\n")
		return
	}

	shown := rows
	if len(shown) > maxRows {
		shown = shown[:maxRows]
	}
	for _, r := range shown {
		out.WriteString(fmt.Sprintf("  %-24s %-28s %-10s %s\n", truncate(r.Name, 24), truncate(r.Email, 28), r.Status, r.Company))
	}
	if len(rows) > maxRows {
		out.WriteString(fmt.Sprintf("  ... and %d more\n", len(rows)-maxRows))
	}
}

func renderPipeline(out *strings.Builder, pipeline []db.StageTotal) {
	maxCount := 0
	for _, t := range pipeline {
		if t.Count > maxCount {
			maxCount = t.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, t := range pipeline {
		// 0-10 blocks
		barLength := (t.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-13s %s  %2d (%s)\n", t.Stage, bar, t.Count, formatAmount(t.Amount)))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
