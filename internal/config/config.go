// Package config resolves mailbox configuration. Environment variables win;
// values saved by `graphmail configure` fill the gaps.
package config

import (
	"github.com/spf13/viper"

	"github.com/uthapjhojho/graphmail/internal/settings"
)

// Environment variable names.
const (
	EnvClientID     = "MS_GRAPH_CLIENT_ID"
	EnvTenantID     = "MS_GRAPH_TENANT_ID"
	EnvRefreshToken = "MS_GRAPH_REFRESH_TOKEN"
	EnvOwnerAddress = "MS_GRAPH_OWNER_ADDRESS"
)

// Config holds everything the Graph client needs to operate.
type Config struct {
	ClientID     string `mapstructure:"client_id"`
	TenantID     string `mapstructure:"tenant_id"`
	RefreshToken string `mapstructure:"refresh_token"`

	// OwnerAddress is the mailbox owner's own address, used by the triage
	// noise filter to suppress self-sent mail. Optional.
	OwnerAddress string `mapstructure:"owner_address"`
}

// IsConfigured reports whether every value required for the token exchange
// is present. Without them every operation fails closed.
func (c *Config) IsConfigured() bool {
	return c.ClientID != "" && c.TenantID != "" && c.RefreshToken != ""
}

// Load resolves configuration from the environment, falling back to the
// settings store for anything the environment leaves unset. A nil store is
// allowed and means env-only.
func Load(store *settings.Store) (*Config, error) {
	v := viper.New()

	if err := v.BindEnv("client_id", EnvClientID); err != nil {
		return nil, err
	}
	if err := v.BindEnv("tenant_id", EnvTenantID); err != nil {
		return nil, err
	}
	if err := v.BindEnv("refresh_token", EnvRefreshToken); err != nil {
		return nil, err
	}
	if err := v.BindEnv("owner_address", EnvOwnerAddress); err != nil {
		return nil, err
	}

	if store != nil {
		if saved, err := store.Load(); err == nil && saved != nil {
			v.SetDefault("client_id", saved.ClientID)
			v.SetDefault("tenant_id", saved.TenantID)
			v.SetDefault("refresh_token", saved.RefreshToken)
			v.SetDefault("owner_address", saved.OwnerAddress)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
