// ABOUTME: Shared fixtures for MCP handler tests
// ABOUTME: Temp databases, a fake contact directory, and signed-in providers
package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/sync"
)

const directoryBody = `[
	{"firstname":"Ada","lastname":"Lovelace","email":"ada@example.com","status":"active","socname":"Analytical"},
	{"firstname":"Grace","lastname":"Hopper","email":"grace@example.com","status":"prospect","company":"Navy"},
	{"firstname":"Alan","lastname":"Turing","phone":"555-0100","status":"inactive"}
]`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "handlers.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// setupDirectory serves directoryBody to requests carrying the key "secret".
func setupDirectory(t *testing.T) (*httptest.Server, config.DirectoryConfig) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("DOLAPIKEY") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("bad api key"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directoryBody))
	}))
	t.Cleanup(srv.Close)
	return srv, config.DirectoryConfig{BaseURL: srv.URL, APIKey: "secret"}
}

func newSession(srv *httptest.Server, database *sql.DB) *sync.Session {
	opts := []sync.SessionOption{}
	if database != nil {
		opts = append(opts, sync.WithRecorder(db.SyncRecorder{DB: database}))
	}
	return sync.NewSession(&sync.Client{HTTPClient: srv.Client()}, opts...)
}
