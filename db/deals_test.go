// ABOUTME: Tests for deal database operations
// ABOUTME: Covers owner lookup, stage updates, pipeline totals, and seeding
package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/torque/models"
)

func TestCreateDeal(t *testing.T) {
	db := setupTestDB(t)

	deal := &models.Deal{OwnerID: "uid-1", Title: "Big Deal", Amount: 100000}
	if err := CreateDeal(db, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	if deal.ID == uuid.Nil {
		t.Error("Deal ID was not set")
	}
	if deal.Currency != "USD" || deal.Stage != models.StageProspecting {
		t.Errorf("defaults not applied: %+v", deal)
	}

	got, err := GetDeal(db, deal.ID)
	if err != nil {
		t.Fatalf("GetDeal failed: %v", err)
	}
	if got == nil || got.Title != "Big Deal" || got.Amount != 100000 {
		t.Errorf("unexpected deal: %+v", got)
	}
}

func TestCreateDealValidation(t *testing.T) {
	db := setupTestDB(t)

	cases := []*models.Deal{
		{Title: "No owner"},
		{OwnerID: "uid-1"},
		{OwnerID: "uid-1", Title: "Bad stage", Stage: "won"},
	}
	for _, deal := range cases {
		if err := CreateDeal(db, deal); err == nil {
			t.Errorf("expected error for %+v", deal)
		}
	}
}

func TestGetDealMissing(t *testing.T) {
	db := setupTestDB(t)

	got, err := GetDeal(db, uuid.New())
	if err != nil {
		t.Fatalf("GetDeal failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestUpdateDealStage(t *testing.T) {
	db := setupTestDB(t)

	deal := &models.Deal{OwnerID: "uid-1", Title: "Stage Deal"}
	if err := CreateDeal(db, deal); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	if err := UpdateDealStage(db, deal.ID, models.StageProposal); err != nil {
		t.Fatalf("UpdateDealStage failed: %v", err)
	}
	got, _ := GetDeal(db, deal.ID)
	if got.Stage != models.StageProposal {
		t.Errorf("expected proposal, got %s", got.Stage)
	}

	if err := UpdateDealStage(db, deal.ID, "nope"); err == nil {
		t.Error("expected error for unknown stage")
	}
	if err := UpdateDealStage(db, uuid.New(), models.StageProposal); err == nil {
		t.Error("expected error for missing deal")
	}
}

func TestGetDealsForUser(t *testing.T) {
	db := setupTestDB(t)

	if _, err := SeedSampleDeals(db, "uid-1"); err != nil {
		t.Fatalf("SeedSampleDeals failed: %v", err)
	}
	other := &models.Deal{OwnerID: "uid-2", Title: "Someone else's"}
	if err := CreateDeal(db, other); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	deals := GetDealsForUser(context.Background(), db, "uid-1")
	if len(deals) != len(sampleDeals) {
		t.Fatalf("expected %d deals, got %d", len(sampleDeals), len(deals))
	}
	for _, d := range deals {
		if d.OwnerID != "uid-1" {
			t.Errorf("deal for wrong owner: %+v", d)
		}
	}
	if deals[0].Title != sampleDeals[0].Title {
		t.Errorf("expected creation order, got %q first", deals[0].Title)
	}
}

func TestGetDealsForUserNeverFails(t *testing.T) {
	db := setupTestDB(t)

	for _, uid := range []string{"", "   "} {
		deals := GetDealsForUser(context.Background(), db, uid)
		if deals == nil || len(deals) != 0 {
			t.Errorf("expected empty list for %q, got %v", uid, deals)
		}
	}

	if deals := GetDealsForUser(context.Background(), nil, "uid-1"); len(deals) != 0 {
		t.Errorf("expected empty list without database, got %v", deals)
	}

	db.Close()
	deals := GetDealsForUser(context.Background(), db, "uid-1")
	if deals == nil || len(deals) != 0 {
		t.Errorf("expected empty list on query failure, got %v", deals)
	}
}

func TestFindDeals(t *testing.T) {
	db := setupTestDB(t)
	if _, err := SeedSampleDeals(db, "uid-1"); err != nil {
		t.Fatalf("SeedSampleDeals failed: %v", err)
	}

	deals, err := FindDeals(db, "uid-1", models.StageNegotiation, 0)
	if err != nil {
		t.Fatalf("FindDeals failed: %v", err)
	}
	if len(deals) != 1 || deals[0].Title != "Fleet telematics rollout" {
		t.Errorf("unexpected deals: %+v", deals)
	}

	all, err := FindDeals(db, "", "", 3)
	if err != nil {
		t.Fatalf("FindDeals failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected limit of 3, got %d", len(all))
	}
}

func TestPipelineSummary(t *testing.T) {
	db := setupTestDB(t)
	if _, err := SeedSampleDeals(db, "uid-1"); err != nil {
		t.Fatalf("SeedSampleDeals failed: %v", err)
	}
	if err := CreateDeal(db, &models.Deal{OwnerID: "uid-1", Title: "Extra", Amount: 100, Stage: models.StageNegotiation}); err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}

	totals, err := PipelineSummary(db, "uid-1")
	if err != nil {
		t.Fatalf("PipelineSummary failed: %v", err)
	}
	if len(totals) != len(models.Stages) {
		t.Fatalf("expected every stage, got %d", len(totals))
	}
	for i, stage := range models.Stages {
		if totals[i].Stage != stage {
			t.Errorf("stage %d: expected %s, got %s", i, stage, totals[i].Stage)
		}
	}

	negotiation := totals[3]
	if negotiation.Count != 2 || negotiation.Amount != 4800100 {
		t.Errorf("unexpected negotiation totals: %+v", negotiation)
	}

	empty, err := PipelineSummary(db, "nobody")
	if err != nil {
		t.Fatalf("PipelineSummary failed: %v", err)
	}
	for _, s := range empty {
		if s.Count != 0 {
			t.Errorf("expected empty pipeline, got %+v", s)
		}
	}
}
