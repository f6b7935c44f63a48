package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "accounts", cfg.Balance.Table)
	assert.Equal(t, "balance", cfg.Balance.Field)
	assert.Equal(t, "live", cfg.Dashboard.Mode)
	assert.Equal(t, 1500*time.Millisecond, cfg.Auth.Delay)
	assert.Equal(t, "@every 1m", cfg.ReportCron)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
http_port: "9000"
backend:
  driver: memory
  channel: from_file
auth:
  delay: 250ms
  login_id: FILEUSER
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("BACKEND_CHANNEL", "from_env")
	t.Setenv("LOGIN_DELAY", "10ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.Backend.Driver)
	assert.Equal(t, "from_env", cfg.Backend.Channel)
	assert.Equal(t, 10*time.Millisecond, cfg.Auth.Delay)
	assert.Equal(t, "FILEUSER", cfg.Auth.LoginID)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var c Config
		presetDurations(&c)
		applyDefaults(&c)
		c.Backend.Driver = "memory"
		return c
	}

	require.NoError(t, base().Validate())

	c := base()
	c.Dashboard.Mode = "fancy"
	assert.Error(t, c.Validate())

	c = base()
	c.Auth.Mode = "ldap"
	assert.Error(t, c.Validate())

	c = base()
	c.Balance.Field = " "
	assert.Error(t, c.Validate())

	c = base()
	c.Backend.Driver = "postgres"
	assert.Error(t, c.Validate(), "live mode without a url")

	c = base()
	c.Backend.Driver = "postgres"
	c.Dashboard.Mode = "static"
	assert.NoError(t, c.Validate())

	c = base()
	c.Auth.Mode = "store"
	assert.Error(t, c.Validate(), "store auth with the memory driver")

	c = base()
	c.Auth.Delay = 0
	assert.NoError(t, c.Validate(), "zero delay is allowed")

	c = base()
	c.Auth.AccessTTL = 0
	assert.Error(t, c.Validate())
}

func TestLoad_ZeroDelayFromEnv(t *testing.T) {
	t.Setenv("LOGIN_DELAY", "0")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Auth.Delay)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
}

func TestLoad_ZeroDelayFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  delay: 0s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Auth.Delay)
}

func TestLoad_MalformedEnvDuration(t *testing.T) {
	t.Setenv("LOGIN_DELAY", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOGIN_DELAY")
}

func TestLoad_MalformedRateLimit(t *testing.T) {
	t.Setenv("RATE_RPS", "lots")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_RPS")
}
