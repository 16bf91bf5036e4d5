// ABOUTME: MCP prompt handlers for reusable dashboard workflow templates
// ABOUTME: Builds contact-summary and pipeline-review prompts from live data
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/dashboard"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Prompts lists what GetPrompt serves.
var Prompts = []*mcp.Prompt{
	{
		Name:        "contact-summary",
		Description: "Summarize the contacts matching a search",
		Arguments: []*mcp.PromptArgument{
			{Name: "query", Description: "Search text; blank covers every contact"},
		},
	},
	{
		Name:        "pipeline-review",
		Description: "Review the signed-in user's deal pipeline",
	},
}

type PromptHandlers struct {
	db       *sql.DB
	session  *sync.Session
	provider auth.Provider
}

func NewPromptHandlers(database *sql.DB, session *sync.Session, provider auth.Provider) *PromptHandlers {
	return &PromptHandlers{db: database, session: session, provider: provider}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	user, err := auth.RequireUser(h.provider)
	if err != nil {
		return nil, err
	}

	switch request.Params.Name {
	case "contact-summary":
		return h.contactSummaryPrompt(request.Params.Arguments["query"])
	case "pipeline-review":
		return h.pipelineReviewPrompt(user)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) contactSummaryPrompt(query string) (*mcp.GetPromptResult, error) {
	view := dashboard.Build(h.session.Snapshot(), query)

	var text strings.Builder
	text.WriteString("Please summarize these contacts from our directory:\n\n")
	if view.Demo {
		text.WriteString("(These are demo contacts; no sync has returned real data yet.)\n\n")
	}
	for _, row := range view.Rows {
		text.WriteString(fmt.Sprintf("- %s", row.Name))
		if row.Company != "" {
			text.WriteString(fmt.Sprintf(", %s", row.Company))
		}
		if row.Email != "" {
			text.WriteString(fmt.Sprintf(" <%s>", row.Email))
		}
		text.WriteString(fmt.Sprintf(" [%s]\n", row.Status))
	}
	if len(view.Rows) == 0 {
		text.WriteString("No contacts match.\n")
	}
	text.WriteString(fmt.Sprintf("\nDirectory totals: %d contacts, %d active, %d prospects.\n",
		view.Stats.Total, view.Stats.Active, view.Stats.Prospects))

	text.WriteString("\nPlease provide:")
	text.WriteString("\n1. Who these contacts are and how they group by company")
	text.WriteString("\n2. Which prospects look worth following up")

	description := "Summary of all contacts"
	if strings.TrimSpace(query) != "" {
		description = fmt.Sprintf("Summary of contacts matching %q", query)
	}
	return textPrompt(description, text.String()), nil
}

func (h *PromptHandlers) pipelineReviewPrompt(user *auth.User) (*mcp.GetPromptResult, error) {
	totals, err := db.PipelineSummary(h.db, user.UID)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	text.WriteString("Please review this sales pipeline:\n\n")
	for _, t := range totals {
		text.WriteString(fmt.Sprintf("- %s: %d deals, $%.2f\n", t.Stage, t.Count, float64(t.Amount)/100))
	}
	text.WriteString("\nPlease identify where deals are stalling and suggest next steps.")

	return textPrompt(fmt.Sprintf("Pipeline review for %s", user.Email), text.String()), nil
}

func textPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
