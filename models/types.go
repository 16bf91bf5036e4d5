// ABOUTME: Data models for the contact dashboard
// ABOUTME: Defines Contact, ContactStats, Deal, and sync history records
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnnamedContact is shown when a contact has neither first nor last name.
const UnnamedContact = "Unnamed contact"

// Contact is one entry from the remote contact directory. Empty strings mean the
// directory did not provide the field.
type Contact struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	PhonePro  string `json:"phone_pro,omitempty"`
	Address   string `json:"address,omitempty"`
	Status    string `json:"status"`
	Company   string `json:"company,omitempty"`
}

// DisplayName renders "Last, First", falling back to whichever part exists.
func (c Contact) DisplayName() string {
	first := strings.TrimSpace(c.FirstName)
	last := strings.TrimSpace(c.LastName)

	switch {
	case first != "" && last != "":
		return last + ", " + first
	case last != "":
		return last
	case first != "":
		return first
	}
	return UnnamedContact
}

// PrimaryPhone returns the phone number, falling back to the professional phone.
func (c Contact) PrimaryPhone() string {
	if c.Phone != "" {
		return c.Phone
	}
	return c.PhonePro
}

// DisplayKey returns the most available identifier for the contact.
func (c Contact) DisplayKey() string {
	if c.Email != "" {
		return c.Email
	}
	return c.PrimaryPhone()
}

// Contact status values.
const (
	StatusActive   = "active"
	StatusProspect = "prospect"
	StatusInactive = "inactive"
)

// ContactStats summarizes the unfiltered contact source.
type ContactStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Prospects int `json:"prospects"`
}

type Deal struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Company   string    `json:"company,omitempty"`
	Amount    int64     `json:"amount,omitempty"` // in cents
	Currency  string    `json:"currency"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	StageProspecting   = "prospecting"
	StageQualification = "qualification"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosedWon     = "closed_won"
	StageClosedLost    = "closed_lost"
)

// Stages lists deal stages in pipeline order.
var Stages = []string{
	StageProspecting,
	StageQualification,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// Sync status constants.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusError   = "error"
)

// ContactsService names the contact directory in sync history.
const ContactsService = "contacts"

type SyncState struct {
	Service      string     `json:"service"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ContactCount int        `json:"contact_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SyncRun records a single sync attempt.
type SyncRun struct {
	ID           string     `json:"id"`
	Service      string     `json:"service"`
	Endpoint     string     `json:"endpoint"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Status       string     `json:"status"`
	ContactCount int        `json:"contact_count"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Duration reports how long the run took, or zero while it is still running.
func (r SyncRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
