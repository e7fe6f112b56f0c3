package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9090
database:
  driver: sqlite
  path: /tmp/boxdesk.db
billing:
  grace_days: 7
  lock_ttl: 10s
`), 0o600))

	t.Setenv("BOXDESK_BILLING_OVERDUE_AFTER_DAYS", "2")

	cfg, err := Load("release", file)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 7, cfg.Billing.GraceDays)
	assert.Equal(t, 2, cfg.Billing.OverdueAfterDays)
	assert.Equal(t, 10*time.Second, cfg.Billing.LockTTL)
	assert.Equal(t, "0 5 * * *", cfg.Billing.SweepCron)
	assert.Same(t, cfg, Get())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
