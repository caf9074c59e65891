package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MemoryStoreDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
store:
  driver: memory
`))
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Simulation.Tick)
	assert.Equal(t, cfg.Simulation.Tick, cfg.Simulation.BroadcastInterval)
	assert.Equal(t, 3002, cfg.Services.TrackingServicePort)
	assert.Equal(t, 64, cfg.WebSocket.MaxFanout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "ZN003", cfg.Zones.Default)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestParse_PostgresRequiresCredentials(t *testing.T) {
	_, err := Parse([]byte(`
database:
  host: db
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.user is required")
	assert.Contains(t, err.Error(), "database.password is required")
}

func TestParse_DurationsAndZones(t *testing.T) {
	cfg, err := Parse([]byte(`
store:
  driver: memory
simulation:
  tick: 2s
  broadcast_interval: 1s
  seed: 42
zones:
  default: ZN900
  boxes:
    - id: ZN900
      lat_min: 10
      lat_max: 11
      lng_min: 20
      lng_max: 21
`))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Simulation.Tick)
	assert.Equal(t, time.Second, cfg.Simulation.BroadcastInterval)
	assert.EqualValues(t, 42, cfg.Simulation.Seed)

	zones, err := cfg.ZoneTable()
	require.NoError(t, err)
	assert.Equal(t, "ZN900", zones.DefaultID())
	box := zones.Bounds("unknown")
	assert.Equal(t, 10.0, box.LatMin())
	_, ok := zones.Lookup("ZN001")
	assert.True(t, ok, "built-in zones stay available")
}

func TestParse_RejectsInvertedZone(t *testing.T) {
	_, err := Parse([]byte(`
store:
  driver: memory
zones:
  boxes:
    - id: BAD
      lat_min: 11
      lat_max: 10
      lng_min: 20
      lng_max: 21
`))
	require.Error(t, err)
}

func TestParse_RejectsUnknownStoreDriver(t *testing.T) {
	_, err := Parse([]byte(`
store:
  driver: sqlite
`))
	require.Error(t, err)
}

func TestParse_JWTEnabledNeedsSecret(t *testing.T) {
	_, err := Parse([]byte(`
store:
  driver: memory
jwt:
  enabled: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret_key")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: memory\n"), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
