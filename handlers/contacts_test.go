// ABOUTME: Tests for contact MCP tool handlers
// ABOUTME: Covers sync, search, stats, and the sign-in gate
package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/auth/authtest"
	"github.com/harperreed/torque/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncContacts(t *testing.T) {
	srv, dir := setupDirectory(t)
	handler := NewContactHandlers(newSession(srv, nil), authtest.SignedIn("ada@example.com"), dir)

	_, out, err := handler.SyncContacts(context.Background(), nil, SyncContactsInput{})
	require.NoError(t, err)

	assert.Equal(t, srv.URL, out.BaseURL)
	assert.Equal(t, 3, out.Count)
	assert.NotEmpty(t, out.LastSync)
	assert.Equal(t, 3, out.Stats.Total)
	assert.Equal(t, 1, out.Stats.Active)
	assert.Equal(t, 1, out.Stats.Prospects)
}

func TestSyncContacts_OverrideKey(t *testing.T) {
	srv, dir := setupDirectory(t)
	handler := NewContactHandlers(newSession(srv, nil), authtest.SignedIn("ada@example.com"), dir)

	_, _, err := handler.SyncContacts(context.Background(), nil, SyncContactsInput{APIKey: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sync.ErrRequestFailed))
	assert.Equal(t, "bad api key", err.Error())
}

func TestSyncContacts_ConfiguredKeyStaysWithConfiguredURL(t *testing.T) {
	srv, dir := setupDirectory(t)
	handler := NewContactHandlers(newSession(srv, nil), authtest.SignedIn("ada@example.com"), dir)

	var hits int32
	var seenKey atomic.Value
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		seenKey.Store(r.Header.Get("DOLAPIKEY"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer other.Close()

	_, _, err := handler.SyncContacts(context.Background(), nil, SyncContactsInput{BaseURL: other.URL})
	assert.ErrorIs(t, err, sync.ErrMissingCredential)
	assert.Zero(t, atomic.LoadInt32(&hits))

	_, out, err := handler.SyncContacts(context.Background(), nil, SyncContactsInput{BaseURL: other.URL, APIKey: "theirs"})
	require.NoError(t, err)
	assert.Equal(t, other.URL, out.BaseURL)
	assert.Equal(t, "theirs", seenKey.Load())

	// Naming the configured URL explicitly still uses the configured key.
	_, out, err = handler.SyncContacts(context.Background(), nil, SyncContactsInput{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
}

func TestSyncContacts_RequiresSignIn(t *testing.T) {
	srv, dir := setupDirectory(t)

	signedOut := NewContactHandlers(newSession(srv, nil), authtest.New("ada@example.com", "pw"), dir)
	_, _, err := signedOut.SyncContacts(context.Background(), nil, SyncContactsInput{})
	assert.ErrorIs(t, err, auth.ErrNotSignedIn)

	unconfigured := NewContactHandlers(newSession(srv, nil), auth.Unavailable(), dir)
	_, _, err = unconfigured.SyncContacts(context.Background(), nil, SyncContactsInput{})
	assert.ErrorIs(t, err, auth.ErrProviderUnavailable)
}

func TestFindContacts(t *testing.T) {
	srv, dir := setupDirectory(t)
	handler := NewContactHandlers(newSession(srv, nil), authtest.SignedIn("ada@example.com"), dir)

	// Before a sync the demo contacts are searched.
	_, out, err := handler.FindContacts(context.Background(), nil, FindContactsInput{})
	require.NoError(t, err)
	assert.True(t, out.Demo)
	assert.Equal(t, 5, out.Total)

	_, _, err = handler.SyncContacts(context.Background(), nil, SyncContactsInput{})
	require.NoError(t, err)

	_, out, err = handler.FindContacts(context.Background(), nil, FindContactsInput{Query: "ANALYTICAL"})
	require.NoError(t, err)
	assert.False(t, out.Demo)
	require.Len(t, out.Contacts, 1)
	assert.Equal(t, "Lovelace, Ada", out.Contacts[0].Name)
	assert.Equal(t, "ada@example.com", out.Contacts[0].Key)

	_, out, err = handler.FindContacts(context.Background(), nil, FindContactsInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, out.Contacts, 2)
	assert.Equal(t, 3, out.Total)
}

func TestContactStats(t *testing.T) {
	srv, dir := setupDirectory(t)
	handler := NewContactHandlers(newSession(srv, nil), authtest.SignedIn("ada@example.com"), dir)

	_, out, err := handler.ContactStats(context.Background(), nil, ContactStatsInput{})
	require.NoError(t, err)
	assert.True(t, out.Demo)
	assert.Equal(t, sync.StatusIdle, out.Status)
	assert.Empty(t, out.LastSync)

	// A blank URL falls back to the configured directory.
	_, _, err = handler.SyncContacts(context.Background(), nil, SyncContactsInput{BaseURL: "  "})
	require.NoError(t, err)

	_, out, err = handler.ContactStats(context.Background(), nil, ContactStatsInput{})
	require.NoError(t, err)
	assert.False(t, out.Demo)
	assert.Equal(t, 3, out.Total)
}
