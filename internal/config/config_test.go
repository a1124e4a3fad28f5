package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uthapjhojho/graphmail/internal/settings"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-client")
	t.Setenv(EnvTenantID, "env-tenant")
	t.Setenv(EnvRefreshToken, "env-refresh")
	t.Setenv(EnvOwnerAddress, "owner@example.com")

	cfg, err := Load(nil)
	require.Nil(t, err)
	require.Equal(t, "env-client", cfg.ClientID)
	require.Equal(t, "env-tenant", cfg.TenantID)
	require.Equal(t, "env-refresh", cfg.RefreshToken)
	require.Equal(t, "owner@example.com", cfg.OwnerAddress)
	require.True(t, cfg.IsConfigured())
}

func TestLoadEnvOverridesStore(t *testing.T) {
	store, err := settings.NewStoreAt(t.TempDir())
	require.Nil(t, err)
	require.Nil(t, store.Save(&settings.Settings{
		ClientID:     "stored-client",
		TenantID:     "stored-tenant",
		RefreshToken: "stored-refresh",
	}))

	t.Setenv(EnvClientID, "env-client")

	cfg, err := Load(store)
	require.Nil(t, err)
	require.Equal(t, "env-client", cfg.ClientID)
	require.Equal(t, "stored-tenant", cfg.TenantID)
	require.Equal(t, "stored-refresh", cfg.RefreshToken)
}

func TestIsConfigured(t *testing.T) {
	cfg := &Config{ClientID: "c", TenantID: "t", RefreshToken: "r"}
	require.True(t, cfg.IsConfigured())

	for _, missing := range []Config{
		{TenantID: "t", RefreshToken: "r"},
		{ClientID: "c", RefreshToken: "r"},
		{ClientID: "c", TenantID: "t"},
		{},
	} {
		require.False(t, missing.IsConfigured())
	}
}
