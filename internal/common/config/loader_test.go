package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: applications
    user: app
  elasticsearch:
    url: http://localhost:9200
  redis:
    address: localhost:6379
`

// ==========================
// Core Functionality Tests
// ==========================

func TestLoadFromFile_AppliesLifecycleDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Lifecycle.EditCooldown)
	assert.Equal(t, 24*time.Hour, cfg.Lifecycle.NudgeCooldown)
	assert.Equal(t, 50, cfg.Lifecycle.InitialScore)
	assert.Equal(t, 10, cfg.Lifecycle.NudgeBonus)
	assert.Equal(t, "postgres", cfg.Lifecycle.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.Lifecycle.DistributedLock.TTL)
	assert.Equal(t, "applications", cfg.Search.Index)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.GetAddresses())

	cutover, err := cfg.Lifecycle.ReviewCycleStartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), cutover)
}

func TestLoadFromFile_ParsesDurations(t *testing.T) {
	body := minimalConfig + `
lifecycle:
  edit_cooldown: 12h
  nudge_cooldown: 90m
  distributed_lock:
    enabled: true
    wait: 500ms
workers:
  nudge-application:
    enabled: false
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.Lifecycle.EditCooldown)
	assert.Equal(t, 90*time.Minute, cfg.Lifecycle.NudgeCooldown)
	assert.True(t, cfg.Lifecycle.DistributedLock.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Lifecycle.DistributedLock.Wait)

	assert.False(t, IsWorkerEnabled(cfg, "nudge-application"))
	assert.True(t, IsWorkerEnabled(cfg, "update-application"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "nudge-application").MaxJobsActive)
}

func TestLoadFromFile_MemoryDriverSkipsPostgres(t *testing.T) {
	body := `
camunda:
  broker_address: localhost:26500
database:
  elasticsearch:
    addresses: [http://es:9200]
  redis:
    address: localhost:6379
lifecycle:
  store_driver: memory
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Lifecycle.StoreDriver)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing broker",
			body: "database:\n  redis:\n    address: x\n",
			want: "camunda.broker_address",
		},
		{
			name: "unknown store driver",
			body: minimalConfig + "lifecycle:\n  store_driver: mongo\n",
			want: "store_driver",
		},
		{
			name: "bad cutover",
			body: minimalConfig + "lifecycle:\n  review_cycle_start: tomorrow\n",
			want: "review_cycle_start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
