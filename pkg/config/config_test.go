package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/splitdepth/pkg/config"
)

const (
	defaultPort         = 8080
	defaultCacheEntries = 1024
	defaultMaxLength    = 300
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "splitdepth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "memo", cfg.Solver.Mode)
	assert.Equal(t, defaultMaxLength, cfg.Solver.MaxLength)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, defaultCacheEntries, cfg.Server.CacheEntries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
solver:
  mode: iterative
  max_length: 50

output:
  format: json
  color: false

server:
  port: 9000
  host: "0.0.0.0"
  cache_entries: 0
  read_timeout: "15s"
  write_timeout: "20s"
  idle_timeout: "2m"

logging:
  level: debug
  format: json
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "iterative", cfg.Solver.Mode)
	assert.Equal(t, 50, cfg.Solver.MaxLength)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Zero(t, cfg.Server.CacheEntries)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 20*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SPLITDEPTH_SERVER_PORT", "9090")
	t.Setenv("SPLITDEPTH_SOLVER_MODE", "brute")
	t.Setenv("SPLITDEPTH_OUTPUT_FORMAT", "yaml")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "brute", cfg.Solver.Mode)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "port too large", content: "server:\n  port: 70000\n", wantErr: config.ErrInvalidPort},
		{name: "port zero", content: "server:\n  port: 0\n", wantErr: config.ErrInvalidPort},
		{name: "unknown mode", content: "solver:\n  mode: greedy\n", wantErr: config.ErrInvalidMode},
		{name: "max length too large", content: "solver:\n  max_length: 301\n", wantErr: config.ErrInvalidMaxLength},
		{name: "negative max length", content: "solver:\n  max_length: -1\n", wantErr: config.ErrInvalidMaxLength},
		{name: "unknown format", content: "output:\n  format: xml\n", wantErr: config.ErrInvalidFormat},
		{name: "negative cache", content: "server:\n  cache_entries: -5\n", wantErr: config.ErrInvalidCacheEntries},
		{name: "unknown log format", content: "logging:\n  format: logfmt\n", wantErr: config.ErrInvalidLogFormat},
		{name: "zero timeout", content: "server:\n  read_timeout: 0s\n", wantErr: config.ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "SPLITDEPTH_DOTENV_PROBE"

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	t.Cleanup(func() { _ = os.Unsetenv(key) })

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLoadDotEnvKeepsExistingVariables(t *testing.T) {
	const key = "SPLITDEPTH_DOTENV_EXISTING"

	t.Setenv(key, "from-env")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv(key))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	t.Parallel()

	require.Error(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
	require.NoError(t, config.LoadDotEnv())
}
