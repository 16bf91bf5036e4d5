// ABOUTME: Contact filtering and derived stats for the dashboard views
// ABOUTME: Falls back to demo placeholders when no contacts have been synced
package dashboard

import (
	"strings"

	"github.com/harperreed/torque/models"
	"golang.org/x/text/cases"
)

// fold case-folds s with a fresh Caser. Casers are not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Source picks the contacts a view works from: the synced contacts, or the
// placeholders when there are none. An empty sync result is indistinguishable
// from no sync at all here.
func Source(contacts, placeholders []models.Contact) []models.Contact {
	if len(contacts) == 0 {
		return placeholders
	}
	return contacts
}

// Filter returns the source entries matching searchText. A blank search
// returns the whole source in order. Matching is a case-folded substring test
// against first name, last name, email, company, and address.
func Filter(contacts, placeholders []models.Contact, searchText string) []models.Contact {
	source := Source(contacts, placeholders)
	query := strings.TrimSpace(searchText)

	out := make([]models.Contact, 0, len(source))
	if query == "" {
		return append(out, source...)
	}

	needle := fold(query)
	for _, c := range source {
		if strings.Contains(searchable(c), needle) {
			out = append(out, c)
		}
	}
	return out
}

func searchable(c models.Contact) string {
	parts := make([]string, 0, 5)
	for _, field := range []string{c.FirstName, c.LastName, c.Email, c.Company, c.Address} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return fold(strings.Join(parts, " "))
}

// ComputeStats counts the unfiltered source. Search text never affects it.
func ComputeStats(contacts, placeholders []models.Contact) models.ContactStats {
	source := Source(contacts, placeholders)

	stats := models.ContactStats{Total: len(source)}
	for _, c := range source {
		switch fold(c.Status) {
		case models.StatusActive:
			stats.Active++
		case models.StatusProspect:
			stats.Prospects++
		}
	}
	return stats
}
