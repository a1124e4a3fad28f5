package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStoreAt(dir)
	require.Nil(t, err)

	// nothing saved yet
	loaded, err := store.Load()
	require.Nil(t, err)
	require.Nil(t, loaded)

	saved := &Settings{
		ClientID:     "client-123",
		TenantID:     "tenant-456",
		RefreshToken: "0.ARoA-secret",
		OwnerAddress: "owner@example.com",
	}
	require.Nil(t, store.Save(saved))

	loaded, err = store.Load()
	require.Nil(t, err)
	require.Equal(t, saved, loaded)

	// the file on disk must not contain the refresh token in the clear
	raw, err := os.ReadFile(filepath.Join(dir, settingsFile))
	require.Nil(t, err)
	require.NotContains(t, string(raw), "0.ARoA-secret")
}

func TestStoreReusesKey(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStoreAt(dir)
	require.Nil(t, err)
	require.Nil(t, store.Save(&Settings{ClientID: "c"}))

	// a second store over the same directory must decrypt what the first wrote
	store2, err := NewStoreAt(dir)
	require.Nil(t, err)
	loaded, err := store2.Load()
	require.Nil(t, err)
	require.Equal(t, "c", loaded.ClientID)
}

func TestStoreDelete(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStoreAt(dir)
	require.Nil(t, err)

	// deleting a missing file is fine
	require.Nil(t, store.Delete())

	require.Nil(t, store.Save(&Settings{TenantID: "t"}))
	require.Nil(t, store.Delete())

	loaded, err := store.Load()
	require.Nil(t, err)
	require.Nil(t, loaded)
}
