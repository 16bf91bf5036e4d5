// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements sync_contacts, find_contacts, and contact_stats over the sync session
package handlers

import (
	"context"
	"time"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/dashboard"
	"github.com/harperreed/torque/models"
	"github.com/harperreed/torque/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	session   *sync.Session
	provider  auth.Provider
	directory config.DirectoryConfig
}

func NewContactHandlers(session *sync.Session, provider auth.Provider, directory config.DirectoryConfig) *ContactHandlers {
	return &ContactHandlers{session: session, provider: provider, directory: directory}
}

type SyncContactsInput struct {
	BaseURL string `json:"base_url,omitempty" jsonschema:"Contact directory base URL (defaults to the configured directory)"`
	APIKey  string `json:"api_key,omitempty" jsonschema:"Contact directory API key (the configured key is only used with the configured URL)"`
}

type SyncContactsOutput struct {
	BaseURL  string              `json:"base_url"`
	Count    int                 `json:"count"`
	LastSync string              `json:"last_sync,omitempty"`
	Stats    models.ContactStats `json:"stats"`
}

// SyncContacts fetches the directory into the session, replacing its contacts.
func (h *ContactHandlers) SyncContacts(ctx context.Context, request *mcp.CallToolRequest, input SyncContactsInput) (*mcp.CallToolResult, SyncContactsOutput, error) {
	if _, err := auth.RequireUser(h.provider); err != nil {
		return nil, SyncContactsOutput{}, err
	}

	baseURL, apiKey := sync.Target(h.directory, input.BaseURL, input.APIKey)
	contacts, err := h.session.Sync(ctx, baseURL, apiKey)
	if err != nil {
		return nil, SyncContactsOutput{}, err
	}

	state := h.session.Snapshot()
	return nil, SyncContactsOutput{
		BaseURL:  state.BaseURL,
		Count:    len(contacts),
		LastSync: formatTime(state.LastSync),
		Stats:    dashboard.ComputeStats(state.Contacts, dashboard.Placeholders()),
	}, nil
}

type FindContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive text matched against name, email, company, and address"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results (default 50)"`
}

type FindContactsOutput struct {
	Contacts []dashboard.Row `json:"contacts"`
	Total    int             `json:"total"`
	Demo     bool            `json:"demo"`
}

func (h *ContactHandlers) FindContacts(_ context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	if _, err := auth.RequireUser(h.provider); err != nil {
		return nil, FindContactsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	contacts := h.session.Contacts()
	rows := dashboard.Rows(contacts, dashboard.Placeholders(), input.Query)
	total := len(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}

	return nil, FindContactsOutput{
		Contacts: rows,
		Total:    total,
		Demo:     len(contacts) == 0,
	}, nil
}

type ContactStatsInput struct{}

type ContactStatsOutput struct {
	Total     int    `json:"total"`
	Active    int    `json:"active"`
	Prospects int    `json:"prospects"`
	Demo      bool   `json:"demo"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LastSync  string `json:"last_sync,omitempty"`
}

// ContactStats reports totals over the unfiltered contacts and the session status.
func (h *ContactHandlers) ContactStats(_ context.Context, request *mcp.CallToolRequest, input ContactStatsInput) (*mcp.CallToolResult, ContactStatsOutput, error) {
	if _, err := auth.RequireUser(h.provider); err != nil {
		return nil, ContactStatsOutput{}, err
	}

	view := dashboard.Build(h.session.Snapshot(), "")
	return nil, ContactStatsOutput{
		Total:     view.Stats.Total,
		Active:    view.Stats.Active,
		Prospects: view.Stats.Prospects,
		Demo:      view.Demo,
		Status:    view.Status,
		Error:     view.Error,
		LastSync:  formatTime(view.LastSync),
	}, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
