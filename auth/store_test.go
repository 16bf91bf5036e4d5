package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPathXDG(t *testing.T) {
	path := TokenPath()

	assert.Equal(t, filepath.Join(xdg.DataHome, "torque"), filepath.Dir(path))
	assert.Equal(t, "identity-token.json", filepath.Base(path))
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "identity-token.json")
	store := NewFileTokenStore(path)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing file means no session")

	expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.Save(&StoredSession{UID: "uid-1", Email: "ada@example.com", IDToken: "id", RefreshToken: "refresh", Expiry: expiry}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "uid-1", loaded.UID)
	assert.True(t, expiry.Equal(loaded.Expiry))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileTokenStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity-token.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0600))

	_, err := NewFileTokenStore(path).Load()
	assert.Error(t, err)
}

func TestNewFileTokenStore_DefaultPath(t *testing.T) {
	assert.Equal(t, TokenPath(), NewFileTokenStore("").Path)
}
