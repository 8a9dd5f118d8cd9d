package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/s0up4200/tradingpost/spacetraders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() *Config {
	return &Config{
		SpaceTraders: SpaceTradersConfig{
			Token:       "abc",
			BaseURL:     spacetraders.DefaultBaseURL,
			MinInterval: 500 * time.Millisecond,
			Concurrency: 1,
			Timeout:     30 * time.Second,
			Systems:     []string{"OE"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("SPACETRADERS_TOKEN", "")

	path := writeConfig(t, `
spacetraders:
  token: file-token
  min_interval: 250ms
  systems: [oe, xv]
filter:
  presets:
    haulers: MaxCargo >= 300
logging:
  level: DEBUG
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.SpaceTraders.Token)
	assert.Equal(t, 250*time.Millisecond, cfg.SpaceTraders.MinInterval)
	assert.Equal(t, []string{"OE", "XV"}, cfg.SpaceTraders.Systems)
	assert.Equal(t, spacetraders.DefaultBaseURL, cfg.SpaceTraders.BaseURL)
	assert.Equal(t, spacetraders.DefaultTimeout, cfg.SpaceTraders.Timeout)
	assert.Equal(t, 1, cfg.SpaceTraders.Concurrency)
	assert.Equal(t, "MaxCargo >= 300", cfg.Filter.Presets["haulers"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
spacetraders:
  token: file-token
`)

	t.Run("prefixed variables", func(t *testing.T) {
		t.Setenv("TRADINGPOST_SPACETRADERS_TOKEN", "env-token")
		t.Setenv("TRADINGPOST_LOGGING_FORMAT", "json")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-token", cfg.SpaceTraders.Token)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("plain token variable", func(t *testing.T) {
		t.Setenv("SPACETRADERS_TOKEN", "plain-token")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "plain-token", cfg.SpaceTraders.Token)
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("SPACETRADERS_TOKEN", "")

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "error reading config")
	})

	t.Run("no token", func(t *testing.T) {
		_, err := Load(writeConfig(t, "logging:\n  level: info\n"))
		assert.ErrorContains(t, err, "spacetraders.token is required")
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TRADINGPOST_DOTENV_CHECK=loaded\n"), 0o600))
	t.Setenv("TRADINGPOST_DOTENV_CHECK", "")
	require.NoError(t, os.Unsetenv("TRADINGPOST_DOTENV_CHECK"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv("TRADINGPOST_DOTENV_CHECK"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing token",
			mutate:  func(cfg *Config) { cfg.SpaceTraders.Token = "" },
			wantErr: "spacetraders.token is required",
		},
		{
			name:    "bad base URL",
			mutate:  func(cfg *Config) { cfg.SpaceTraders.BaseURL = "api.spacetraders.io" },
			wantErr: "invalid spacetraders.base_url",
		},
		{
			name:    "negative interval",
			mutate:  func(cfg *Config) { cfg.SpaceTraders.MinInterval = -time.Second },
			wantErr: "invalid spacetraders.min_interval",
		},
		{
			name:    "zero concurrency",
			mutate:  func(cfg *Config) { cfg.SpaceTraders.Concurrency = 0 },
			wantErr: "invalid spacetraders.concurrency",
		},
		{
			name:    "no systems",
			mutate:  func(cfg *Config) { cfg.SpaceTraders.Systems = nil },
			wantErr: "spacetraders.systems is required",
		},
		{
			name:    "bad system symbol",
			mutate:  func(cfg *Config) { cfg.SpaceTraders.Systems = []string{"OE", "X-V"} },
			wantErr: "invalid spacetraders.systems[1]",
		},
		{
			name:    "invalid level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "verbose" },
			wantErr: "invalid logging.level: verbose",
		},
		{
			name:    "invalid format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "invalid logging.format: xml",
		},
		{
			name:    "empty preset",
			mutate:  func(cfg *Config) { cfg.Filter.Presets = map[string]string{"haulers": ""} },
			wantErr: "filter.presets[haulers] is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
