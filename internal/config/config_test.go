package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 350.0, cfg.Billing.FeeFor("general_consultation"))
	assert.Equal(t, 800.0, cfg.Billing.FeeFor("emergency"))
	assert.Equal(t, cfg.Billing.DefaultFee, cfg.Billing.FeeFor("unknown"))
	assert.Equal(t, "clinic.events.", cfg.Redis.ChannelPrefix)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9000
database:
  host: db.internal
  max_open_conns: 40
billing:
  fees:
    follow_up: 200
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("CLINIC_DATABASE_HOST", "db.override")
	t.Setenv("CLINIC_OUTBOX_BATCH_SIZE", "10")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, 40, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Outbox.BatchSize)
	assert.Equal(t, 200.0, cfg.Billing.FeeFor("follow_up"))
	assert.Contains(t, cfg.Database.DSN(), "host=db.override")
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("CLINIC_MAIL_ENABLED", "true")
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "mail.host")
}
