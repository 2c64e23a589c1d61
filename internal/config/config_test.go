package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsPingLongerThanPong(t *testing.T) {
	cfg := Default()
	cfg.WebSocket.PingPeriod = cfg.WebSocket.PongWait
	assert.Error(t, cfg.Validate())
}

func TestExtensionAllowed(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Upload.ExtensionAllowed(".xlsx"))
	assert.True(t, cfg.Upload.ExtensionAllowed(".XLSX"))
	assert.True(t, cfg.Upload.ExtensionAllowed(".csv"))
	assert.False(t, cfg.Upload.ExtensionAllowed(".exe"))
	assert.False(t, cfg.Upload.ExtensionAllowed(""))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("server:\n  port: 9090\n  read_timeout: 15s\n  write_timeout: 15s\n  shutdown_timeout: 10s\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))

	_, err := loadFromFile(path)
	assert.Error(t, err)
}

func TestMergeConfigsEnvWins(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9000

	envCfg := Config{}
	envCfg.Server.Port = 9500

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 9500, merged.Server.Port)
	assert.Equal(t, fileCfg.Logging, merged.Logging, "unset env sections keep file values")
}
