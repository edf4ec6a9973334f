package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"exchangeclient/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnvironment(t *testing.T) {
	t.Setenv("EXCHANGE_USERNAME", "trader")
	t.Setenv("EXCHANGE_EXEC_PORT", "9001")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 7001, cfg.InfoPort)
	assert.Equal(t, 9001, cfg.ExecPort)
	assert.Equal(t, 100, cfg.MaxTradeHistory)
	assert.Equal(t, 3, cfg.DialAttempts)
	assert.Equal(t, 5*time.Second, cfg.ReportInterval)
	assert.False(t, cfg.FullMessageLogging)

	ex := cfg.Exchange()
	assert.Equal(t, 9001, ex.ExecPort)
	assert.Equal(t, "trader", cfg.Credentials().Username)
}

func TestLoadEnvFileAndJSONOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("EXCHANGE_HOST=env-host\nEXCHANGE_USERNAME=from-env\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("EXCHANGE_HOST")
		os.Unsetenv("EXCHANGE_USERNAME")
	})

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"host":"json-host","maxTradeHistory":5,"fullMessageLogging":true}`), 0o600))

	cfg, err := Load(envFile, path)
	require.NoError(t, err)
	assert.Equal(t, "json-host", cfg.Host)
	assert.Equal(t, "from-env", cfg.Username)
	assert.Equal(t, 5, cfg.MaxTradeHistory)
	assert.True(t, cfg.FullMessageLogging)
	assert.Equal(t, 7001, cfg.InfoPort, "fields absent from the file keep their value")
}

func TestLoadMissingEnvFileIsSkipped(t *testing.T) {
	t.Setenv("EXCHANGE_INFO_ONLY", "true")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"), "")
	require.NoError(t, err)
}

func TestLoadBadFile(t *testing.T) {
	t.Setenv("EXCHANGE_INFO_ONLY", "true")
	_, err := Load("", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"host":`), 0o600))
	_, err = Load("", path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Host: "h", InfoPort: 1, ExecPort: 2, MaxTradeHistory: 1, DialAttempts: 1, Username: "u", ReportInterval: time.Second}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.Host = "" }},
		{"info port", func(c *Config) { c.InfoPort = 0 }},
		{"exec port", func(c *Config) { c.ExecPort = 70000 }},
		{"history", func(c *Config) { c.MaxTradeHistory = 0 }},
		{"dial attempts", func(c *Config) { c.DialAttempts = -1 }},
		{"username", func(c *Config) { c.Username = "" }},
		{"report interval", func(c *Config) { c.ReportInterval = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), exception.ErrInvalidConfig)
		})
	}

	infoOnly := base
	infoOnly.Username = ""
	infoOnly.InfoOnly = true
	require.NoError(t, infoOnly.Validate())
}
