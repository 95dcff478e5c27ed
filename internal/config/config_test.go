package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DATABASE", "plans.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
	assert.Equal(t, LockModeAuto, cfg.LockMode)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, LockModeLocal, cfg.ResolvedLockMode())

	cfg.LockMode = LockModeRow
	assert.EqualError(t, cfg.Validate(), "LOCK_MODE 'row' is not supported for sqlserver")
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("DB_DATABASE", "")

	_, err := Load()
	assert.EqualError(t, err, "DB_DATABASE is required")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBType:            "postgres",
			DBDatabase:        "plans",
			DBUser:            "plans",
			DBConnectionLimit: 5,
			LockMode:          LockModeAuto,
			LockTTL:           time.Second,
			LockRetry:         time.Millisecond,
		}
	}

	cfg := base()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, LockModeRow, cfg.ResolvedLockMode())

	cfg = base()
	cfg.DBType = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DBUser = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.LockMode = "REDIS"
	assert.EqualError(t, cfg.Validate(), "REDIS_URL is required when LOCK_MODE is 'redis'")

	cfg = base()
	cfg.LockMode = "redis"
	cfg.RedisURL = "redis://localhost:6379/0"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, LockModeRedis, cfg.ResolvedLockMode())

	cfg = base()
	cfg.LockMode = "mutex"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DBType = "sqlserver"
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.SupportsRowLocks())
	assert.Equal(t, LockModeLocal, cfg.ResolvedLockMode())

	cfg.LockMode = LockModeRow
	assert.EqualError(t, cfg.Validate(), "LOCK_MODE 'row' is not supported for sqlserver")
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("PLANSDB_TEST_VALUE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PLANSDB_TEST_VALUE") })

	n, err := LoadEnvFiles(file, filepath.Join(dir, ".env.local"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "from-file", os.Getenv("PLANSDB_TEST_VALUE"))

	n, err = LoadEnvFiles(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
