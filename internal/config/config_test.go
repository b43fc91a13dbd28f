package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8083, cfg.Server.Port)
	assert.Equal(t, int64(50), cfg.Server.MaxBodyMB)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./data/chat.db", cfg.Database.Path)
	assert.Equal(t, 300*time.Second, cfg.Gateway.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Database.IsSQLite())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9000
database:
  driver: sqlite_pure
  path: /tmp/x.db
gateway:
  timeout: 45s
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env should win over file")
	assert.Equal(t, DriverSQLitePure, cfg.Database.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, 45*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: DriverSQLite, Path: "x.db"},
			Gateway:  GatewayConfig{Timeout: time.Second},
			Log:      LogConfig{Level: "info"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Database = DatabaseConfig{Driver: DriverPostgres}
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Gateway.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Redis = RedisConfig{Enabled: true}
	assert.Error(t, cfg.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GATEWAY_TIMEOUT=12s\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("GATEWAY_TIMEOUT") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, cfg.Gateway.Timeout)
}
