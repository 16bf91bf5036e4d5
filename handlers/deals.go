// ABOUTME: Deal MCP tool handlers
// ABOUTME: Lists the signed-in user's deals and pipeline totals
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DealHandlers struct {
	db       *sql.DB
	provider auth.Provider
}

func NewDealHandlers(database *sql.DB, provider auth.Provider) *DealHandlers {
	return &DealHandlers{db: database, provider: provider}
}

type ListDealsInput struct {
	Stage string `json:"stage,omitempty" jsonschema:"Only deals in this stage (prospecting, qualification, proposal, negotiation, closed_won, closed_lost)"`
}

type DealOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Company   string `json:"company,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Currency  string `json:"currency"`
	Stage     string `json:"stage"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ListDealsOutput struct {
	Deals       []DealOutput `json:"deals"`
	Total       int          `json:"total"`
	TotalAmount int64        `json:"total_amount"`
}

// ListDeals returns the deals owned by the signed-in user.
func (h *DealHandlers) ListDeals(ctx context.Context, request *mcp.CallToolRequest, input ListDealsInput) (*mcp.CallToolResult, ListDealsOutput, error) {
	user, err := auth.RequireUser(h.provider)
	if err != nil {
		return nil, ListDealsOutput{}, err
	}

	stage := strings.TrimSpace(input.Stage)
	if stage != "" && !isValidStage(stage) {
		return nil, ListDealsOutput{}, fmt.Errorf("invalid stage: %s (valid: %s)", stage, strings.Join(models.Stages, ", "))
	}

	out := ListDealsOutput{Deals: []DealOutput{}}
	for _, deal := range db.GetDealsForUser(ctx, h.db, user.UID) {
		if stage != "" && deal.Stage != stage {
			continue
		}
		out.Deals = append(out.Deals, dealToOutput(deal))
		out.TotalAmount += deal.Amount
	}
	out.Total = len(out.Deals)

	return nil, out, nil
}

func isValidStage(stage string) bool {
	for _, s := range models.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

func dealToOutput(deal models.Deal) DealOutput {
	return DealOutput{
		ID:        deal.ID.String(),
		Title:     deal.Title,
		Company:   deal.Company,
		Amount:    deal.Amount,
		Currency:  deal.Currency,
		Stage:     deal.Stage,
		CreatedAt: deal.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: deal.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
