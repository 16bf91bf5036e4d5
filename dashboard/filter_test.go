// ABOUTME: Tests for contact filtering, stats, and view building
// ABOUTME: Includes placeholder fallback and case-insensitive matching
package dashboard

import (
	stdsync "sync"
	"testing"
	"time"

	"github.com/harperreed/torque/models"
	"github.com/harperreed/torque/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContacts() []models.Contact {
	return []models.Contact{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@engine.example", Company: "Acme Corp", Status: "Active"},
		{FirstName: "Grace", LastName: "Hopper", Address: "Arlington, VA", Status: "PROSPECT"},
		{LastName: "Turing", Company: "Bletchley", Status: "inactive"},
	}
}

func TestFilter_BlankSearchReturnsSource(t *testing.T) {
	contacts := sampleContacts()
	for _, search := range []string{"", "  ", "\t"} {
		got := Filter(contacts, Placeholders(), search)
		assert.Equal(t, contacts, got, "search %q", search)
	}
}

func TestFilter_PlaceholderFallback(t *testing.T) {
	placeholders := Placeholders()

	assert.Equal(t, placeholders, Filter(nil, placeholders, ""))
	assert.Equal(t, placeholders, Filter([]models.Contact{}, placeholders, "   "))
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	contacts := sampleContacts()

	got := Filter(contacts, nil, "acme")
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].FirstName)

	got = Filter(contacts, nil, "  ARLINGTON ")
	require.Len(t, got, 1)
	assert.Equal(t, "Grace", got[0].FirstName)

	// Fields are joined with a space, so a match can span first and last name.
	got = Filter(contacts, nil, "grace hopper")
	require.Len(t, got, 1)

	assert.Empty(t, Filter(contacts, nil, "nobody"))
}

func TestFilter_ConcurrentCallers(t *testing.T) {
	contacts := sampleContacts()

	var wg stdsync.WaitGroup
	results := make([][]models.Contact, 16)
	stats := make([]models.ContactStats, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Filter(contacts, nil, "ACME")
			stats[i] = ComputeStats(contacts, nil)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.Len(t, results[i], 1)
		assert.Equal(t, "Ada", results[i][0].FirstName)
		assert.Equal(t, models.ContactStats{Total: 3, Active: 1, Prospects: 1}, stats[i])
	}
}

func TestFilter_IgnoresPhoneAndStatus(t *testing.T) {
	contacts := []models.Contact{{FirstName: "Ada", Phone: "555-0100", Status: "prospect"}}

	assert.Empty(t, Filter(contacts, nil, "555"))
	assert.Empty(t, Filter(contacts, nil, "prospect"))
}

func TestFilter_Idempotent(t *testing.T) {
	contacts := sampleContacts()
	once := Filter(contacts, nil, "a")
	twice := Filter(once, nil, "a")
	assert.Equal(t, once, twice)
}

func TestFilter_DoesNotMutateInputs(t *testing.T) {
	contacts := sampleContacts()
	got := Filter(contacts, nil, "")
	got[0].FirstName = "changed"

	assert.Equal(t, "Ada", contacts[0].FirstName)
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sampleContacts(), Placeholders())
	assert.Equal(t, models.ContactStats{Total: 3, Active: 1, Prospects: 1}, stats)
}

func TestComputeStats_SingleContact(t *testing.T) {
	contacts := []models.Contact{{FirstName: "A", LastName: "B", Status: "Active"}}
	assert.Equal(t, models.ContactStats{Total: 1, Active: 1, Prospects: 0}, ComputeStats(contacts, Placeholders()))
}

func TestComputeStats_UsesPlaceholdersWhenEmpty(t *testing.T) {
	placeholders := Placeholders()
	stats := ComputeStats([]models.Contact{}, placeholders)

	assert.Equal(t, len(placeholders), stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 2, stats.Prospects)
}

func TestPlaceholdersAreFreshCopies(t *testing.T) {
	first := Placeholders()
	first[0].FirstName = "changed"

	assert.NotEqual(t, "changed", Placeholders()[0].FirstName)
}

func TestRows(t *testing.T) {
	contacts := []models.Contact{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@engine.example", Status: "active"},
		{FirstName: "Nameless", PhonePro: "555-0101", Status: "prospect"},
		{Company: "Ghost Inc", Status: "active"},
	}

	rows := Rows(contacts, nil, "")
	require.Len(t, rows, 3)

	assert.Equal(t, "ada@engine.example", rows[0].Key)
	assert.Equal(t, "Lovelace, Ada", rows[0].Name)
	assert.Equal(t, "555-0101", rows[1].Key)
	assert.Equal(t, "555-0101", rows[1].Phone)
	assert.Equal(t, "contact-2", rows[2].Key)
	assert.Equal(t, models.UnnamedContact, rows[2].Name)
}

func TestBuild(t *testing.T) {
	synced := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	view := Build(sync.State{
		BaseURL:  "https://crm.example.com",
		Contacts: sampleContacts(),
		LastSync: &synced,
	}, "lovelace")

	assert.Equal(t, sync.StatusIdle, view.Status)
	assert.False(t, view.Demo)
	assert.Equal(t, 3, view.Stats.Total, "stats ignore search text")
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "Lovelace, Ada", view.Rows[0].Name)

	empty := Build(sync.State{Error: "not found"}, "")
	assert.True(t, empty.Demo)
	assert.Equal(t, sync.StatusError, empty.Status)
	assert.Len(t, empty.Rows, len(Placeholders()))
}
