// ABOUTME: Deal database operations
// ABOUTME: Handles per-owner deal lookup, stage updates, pipeline totals, and sample data
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/torque/metrics"
	"github.com/harperreed/torque/models"
)

const dealColumns = `id, owner_id, title, company, amount, currency, stage, created_at, updated_at`

func scanDeal(row rowScanner) (models.Deal, error) {
	var d models.Deal
	var company sql.NullString

	err := row.Scan(&d.ID, &d.OwnerID, &d.Title, &company, &d.Amount, &d.Currency, &d.Stage, &d.CreatedAt, &d.UpdatedAt)
	d.Company = company.String
	return d, err
}

func validStage(stage string) bool {
	for _, s := range models.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

func CreateDeal(db *sql.DB, deal *models.Deal) error {
	if strings.TrimSpace(deal.OwnerID) == "" {
		return fmt.Errorf("deal owner is required")
	}
	if strings.TrimSpace(deal.Title) == "" {
		return fmt.Errorf("deal title is required")
	}
	if deal.Stage == "" {
		deal.Stage = models.StageProspecting
	}
	if !validStage(deal.Stage) {
		return fmt.Errorf("unknown deal stage %q", deal.Stage)
	}
	if deal.Currency == "" {
		deal.Currency = "USD"
	}

	deal.ID = uuid.New()
	now := time.Now()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO deals (`+dealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, deal.ID.String(), deal.OwnerID, deal.Title, nullString(deal.Company), deal.Amount, deal.Currency, deal.Stage, deal.CreatedAt, deal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	return nil
}

func GetDeal(db *sql.DB, id uuid.UUID) (*models.Deal, error) {
	deal, err := scanDeal(db.QueryRow(`SELECT `+dealColumns+` FROM deals WHERE id = ?`, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return &deal, nil
}

// UpdateDealStage moves a deal to another pipeline stage.
func UpdateDealStage(db *sql.DB, id uuid.UUID, stage string) error {
	if !validStage(stage) {
		return fmt.Errorf("unknown deal stage %q", stage)
	}

	res, err := db.Exec(`UPDATE deals SET stage = ?, updated_at = ? WHERE id = ?`, stage, time.Now(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update deal stage: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update deal stage: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deal not found: %s", id)
	}
	return nil
}

// FindDeals lists deals, optionally narrowed to an owner and a stage.
func FindDeals(db *sql.DB, ownerID, stage string, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT ` + dealColumns + ` FROM deals WHERE 1 = 1`
	var args []interface{}
	if ownerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, ownerID)
	}
	if stage != "" {
		query += ` AND stage = ?`
		args = append(args, stage)
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deals []models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, d)
	}

	return deals, rows.Err()
}

// GetDealsForUser returns every deal owned by userID. It never fails: a blank
// user, a missing database, or any query error yields an empty list.
func GetDealsForUser(ctx context.Context, db *sql.DB, userID string) []models.Deal {
	deals := []models.Deal{}
	if strings.TrimSpace(userID) == "" || db == nil {
		return deals
	}

	start := time.Now()
	defer metrics.ObserveDBLatency(ctx, "deals_for_user", start)

	rows, err := db.QueryContext(ctx, `
		SELECT `+dealColumns+`
		FROM deals
		WHERE owner_id = ?
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return []models.Deal{}
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return []models.Deal{}
		}
		deals = append(deals, d)
	}
	if rows.Err() != nil {
		return []models.Deal{}
	}

	return deals
}

// StageTotal summarizes one pipeline stage.
type StageTotal struct {
	Stage  string
	Count  int
	Amount int64
}

// PipelineSummary totals deals per stage in pipeline order. Stages without
// deals are included with zero totals. An empty ownerID covers every owner.
func PipelineSummary(db *sql.DB, ownerID string) ([]StageTotal, error) {
	rows, err := db.Query(`
		SELECT stage, COUNT(*), COALESCE(SUM(amount), 0)
		FROM deals
		WHERE ? = '' OR owner_id = ?
		GROUP BY stage
	`, ownerID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize pipeline: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byStage := make(map[string]StageTotal)
	for rows.Next() {
		var t StageTotal
		if err := rows.Scan(&t.Stage, &t.Count, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline totals: %w", err)
		}
		byStage[t.Stage] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pipeline totals: %w", err)
	}

	totals := make([]StageTotal, 0, len(models.Stages))
	for _, stage := range models.Stages {
		t := byStage[stage]
		t.Stage = stage
		totals = append(totals, t)
	}
	return totals, nil
}

var sampleDeals = []models.Deal{
	{Title: "Fleet telematics rollout", Company: "Northwind Logistics", Amount: 4800000, Stage: models.StageNegotiation},
	{Title: "Analytics platform pilot", Company: "Helio Systems", Amount: 1250000, Stage: models.StageProposal},
	{Title: "Warehouse automation study", Company: "Brightforge", Amount: 620000, Stage: models.StageQualification},
	{Title: "Data residency add-on", Company: "Fjord Analytics", Amount: 310000, Stage: models.StageProspecting},
	{Title: "Annual support renewal", Company: "Lagos Labs", Amount: 950000, Stage: models.StageClosedWon},
	{Title: "Edge sensor bundle", Company: "Northwind Logistics", Amount: 275000, Stage: models.StageClosedLost},
}

// SeedSampleDeals creates the demo pipeline for ownerID and returns the new deals.
func SeedSampleDeals(db *sql.DB, ownerID string) ([]models.Deal, error) {
	created := make([]models.Deal, 0, len(sampleDeals))
	for _, sample := range sampleDeals {
		deal := sample
		deal.OwnerID = ownerID
		if err := CreateDeal(db, &deal); err != nil {
			return created, fmt.Errorf("failed to seed %q: %w", sample.Title, err)
		}
		created = append(created, deal)
	}
	return created, nil
}
