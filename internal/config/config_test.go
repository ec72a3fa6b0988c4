package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config file present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 100.0, cfg.Catalog.DefaultRadiusM)
	assert.Equal(t, 200.0, cfg.Resolver.NearestMaxDistanceM)
	assert.Equal(t, 24, cfg.Ticket.MaxDurationHours)
	assert.Equal(t, 60*time.Second, cfg.Ticket.SweepInterval())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Resolver.Providers)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PARKING_STORE_DRIVER", "memory")
	t.Setenv("PARKING_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestProviderConfig_Timeout(t *testing.T) {
	assert.Equal(t, 8*time.Second, ProviderConfig{}.Timeout())
	assert.Equal(t, 5*time.Second, ProviderConfig{TimeoutSecs: 5}.Timeout())
}

func TestTicketConfig_SweepInterval(t *testing.T) {
	assert.Equal(t, 60*time.Second, TicketConfig{}.SweepInterval())
	assert.Equal(t, 15*time.Second, TicketConfig{SweepIntervalSecs: 15}.SweepInterval())
}
