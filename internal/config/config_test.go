package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodflow/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "PORT", "GIN_MODE", "SWEEP_CONCURRENCY", "ANNOUNCEMENT_CATEGORY",
		"OWNER_ROSTER_STRICT", "DB_CONNECT_TIMEOUT", "OTEL_ENABLED", "OTEL_STDOUT", "ROSTER_MEMBERS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UsesMemoryStore())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, 4, cfg.Lifecycle.SweepConcurrency)
	assert.Equal(t, "product", cfg.Lifecycle.AnnouncementCategory)
	assert.True(t, cfg.Lifecycle.OwnerRosterStrict)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnectTimeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Nil(t, cfg.Database.SeedMembers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/prodflow?sslmode=disable")
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SWEEP_CONCURRENCY", "8")
	t.Setenv("OWNER_ROSTER_STRICT", "false")
	t.Setenv("DB_CONNECT_TIMEOUT", "5s")
	t.Setenv("ROSTER_MEMBERS", "alice, bob,,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.UsesMemoryStore())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Lifecycle.SweepConcurrency)
	assert.False(t, cfg.Lifecycle.OwnerRosterStrict)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Database.SeedMembers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero concurrency", "SWEEP_CONCURRENCY", "0"},
		{"unknown gin mode", "GIN_MODE", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GIN_MODE", "debug")
			t.Setenv("SWEEP_CONCURRENCY", "4")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
