// ABOUTME: Display-ready dashboard view built from a sync session snapshot
// ABOUTME: Shared by the TUI, web, CLI, and MCP surfaces
package dashboard

import (
	"fmt"
	"time"

	"github.com/harperreed/torque/models"
	"github.com/harperreed/torque/sync"
)

// Row is one rendered contact line.
type Row struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Company string `json:"company,omitempty"`
	Status  string `json:"status"`
}

// Rows filters and renders contacts. Contacts with neither email nor phone get
// a positional key.
func Rows(contacts, placeholders []models.Contact, searchText string) []Row {
	filtered := Filter(contacts, placeholders, searchText)
	rows := make([]Row, 0, len(filtered))
	for i, c := range filtered {
		key := c.DisplayKey()
		if key == "" {
			key = fmt.Sprintf("contact-%d", i)
		}
		rows = append(rows, Row{
			Key:     key,
			Name:    c.DisplayName(),
			Email:   c.Email,
			Phone:   c.PrimaryPhone(),
			Address: c.Address,
			Company: c.Company,
			Status:  c.Status,
		})
	}
	return rows
}

type View struct {
	BaseURL  string              `json:"base_url,omitempty"`
	Search   string              `json:"search,omitempty"`
	Status   string              `json:"status"`
	Error    string              `json:"error,omitempty"`
	LastSync *time.Time          `json:"last_sync,omitempty"`
	Demo     bool                `json:"demo"`
	Stats    models.ContactStats `json:"stats"`
	Rows     []Row               `json:"rows"`
}

// Build derives the view for a session snapshot and search text.
func Build(state sync.State, searchText string) View {
	placeholders := Placeholders()
	return View{
		BaseURL:  state.BaseURL,
		Search:   searchText,
		Status:   state.Status(),
		Error:    state.Error,
		LastSync: state.LastSync,
		Demo:     len(state.Contacts) == 0,
		Stats:    ComputeStats(state.Contacts, placeholders),
		Rows:     Rows(state.Contacts, placeholders, searchText),
	}
}
