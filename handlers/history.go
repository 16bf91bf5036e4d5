// ABOUTME: Sync history MCP tool handler
// ABOUTME: Reports recent contact directory sync attempts from the local store
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type HistoryHandlers struct {
	db       *sql.DB
	provider auth.Provider
}

func NewHistoryHandlers(database *sql.DB, provider auth.Provider) *HistoryHandlers {
	return &HistoryHandlers{db: database, provider: provider}
}

type SyncHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum runs to return (default 20)"`
}

type SyncRunOutput struct {
	ID           string `json:"id"`
	Endpoint     string `json:"endpoint"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty"`
	DurationMS   int64  `json:"duration_ms"`
	Status       string `json:"status"`
	ContactCount int    `json:"contact_count"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type SyncHistoryOutput struct {
	Runs     []SyncRunOutput `json:"runs"`
	Status   string          `json:"status,omitempty"`
	LastSync string          `json:"last_sync,omitempty"`
}

// SyncHistory lists recent sync runs, newest first, with the stored sync state.
func (h *HistoryHandlers) SyncHistory(_ context.Context, request *mcp.CallToolRequest, input SyncHistoryInput) (*mcp.CallToolResult, SyncHistoryOutput, error) {
	if _, err := auth.RequireUser(h.provider); err != nil {
		return nil, SyncHistoryOutput{}, err
	}

	runs, err := db.ListSyncRuns(h.db, models.ContactsService, input.Limit)
	if err != nil {
		return nil, SyncHistoryOutput{}, fmt.Errorf("failed to list sync runs: %w", err)
	}

	out := SyncHistoryOutput{Runs: make([]SyncRunOutput, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, runToOutput(run))
	}

	state, err := db.GetSyncState(h.db, models.ContactsService)
	if err != nil {
		return nil, SyncHistoryOutput{}, fmt.Errorf("failed to get sync state: %w", err)
	}
	if state != nil {
		out.Status = state.Status
		out.LastSync = formatTime(state.LastSyncTime)
	}

	return nil, out, nil
}

func runToOutput(run models.SyncRun) SyncRunOutput {
	return SyncRunOutput{
		ID:           run.ID,
		Endpoint:     run.Endpoint,
		StartedAt:    formatTime(&run.StartedAt),
		FinishedAt:   formatTime(run.FinishedAt),
		DurationMS:   run.Duration().Milliseconds(),
		Status:       run.Status,
		ContactCount: run.ContactCount,
		ErrorKind:    run.ErrorKind,
		ErrorMessage: run.ErrorMessage,
	}
}
