package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: \"file::memory:\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Server.CacheTTL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "lot1", cfg.Parking.DefaultLotID)
	assert.Equal(t, ImportCeiling, cfg.Parking.MaxImportSpots)
	assert.Equal(t, 1, cfg.Events.WorkerPoolSize)
	assert.Equal(t, "parking", cfg.Events.AMQPExchange)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Monitor.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Monitor.Interval)
	assert.Equal(t, []string{"lot1"}, cfg.Monitor.Lots)
}

func TestLoad_ImportLimitIsClamped(t *testing.T) {
	path := writeConfig(t, "parking:\n  max_import_spots: 2000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ImportCeiling, cfg.Parking.MaxImportSpots)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\ndatabase:\n  driver: postgres\n")
	t.Setenv("VALET_DB_DRIVER", "sqlite")
	t.Setenv("VALET_DB_DSN", "valet.db")
	t.Setenv("VALET_SERVER_PORT", "9100")
	t.Setenv("VALET_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "valet.db", cfg.Database.DSN)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
