package config

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// minimalConfig returns the smallest config that passes validation once
// defaults are merged in.
func minimalConfig() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{BaseURL: "http://lists.local"},
		Vault:   Vault{KeyFile: "vault.key"},
	}
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that an empty config fails validation.
func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrConfig)
}

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_FirstSourceWins verifies that an earlier non-zero field is not
// overwritten by a later source.
func TestBuild_FirstSourceWins(t *testing.T) {
	b := newConfigBuilder()
	first := minimalConfig()
	first.Sync.PollInterval = time.Minute
	b.configs = append(b.configs,
		first,
		&StructuredConfig{Sync: Sync{PollInterval: time.Hour, MaxHistory: 7}},
	)
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Sync.PollInterval)
	assert.Equal(t, 7, cfg.Sync.MaxHistory)
}

// TestBuild_DefaultsFillGaps verifies that defaults populate unset fields.
func TestBuild_DefaultsFillGaps(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, minimalConfig())
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Sync.PollInterval)
	assert.Equal(t, 50, cfg.Sync.MaxHistory)
	assert.Equal(t, 4, cfg.Sync.FetchConcurrency)
	assert.Equal(t, 30*time.Second, cfg.Adapter.Timeout)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddress)
}

// ── validate ──────────────────────────────────────────────────────────────────

// TestValidate_Errors covers every rejected configuration.
func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *StructuredConfig)
		want   error
	}{
		{name: "no key file", mutate: func(c *StructuredConfig) { c.Vault.KeyFile = "" }, want: ErrInvalidVaultConfigs},
		{name: "no adapter url", mutate: func(c *StructuredConfig) { c.Adapter.BaseURL = "" }, want: ErrInvalidAdapterConfigs},
		{name: "zero adapter timeout", mutate: func(c *StructuredConfig) { c.Adapter.Timeout = 0 }, want: ErrInvalidAdapterConfigs},
		{name: "negative rate limit", mutate: func(c *StructuredConfig) { c.Adapter.RateLimit = -1 }, want: ErrInvalidAdapterConfigs},
		{name: "rate limit without redis", mutate: func(c *StructuredConfig) { c.Adapter.RateLimit = 5 }, want: ErrInvalidAdapterConfigs},
		{name: "zero poll interval", mutate: func(c *StructuredConfig) { c.Sync.PollInterval = 0 }, want: ErrInvalidSyncConfigs},
		{name: "zero history", mutate: func(c *StructuredConfig) { c.Sync.MaxHistory = 0 }, want: ErrInvalidSyncConfigs},
		{name: "zero concurrency", mutate: func(c *StructuredConfig) { c.Sync.FetchConcurrency = 0 }, want: ErrInvalidSyncConfigs},
		{name: "no listeners", mutate: func(c *StructuredConfig) { c.Server.HTTPAddress = "" }, want: ErrInvalidServerConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Adapter.BaseURL = "http://lists.local"
			cfg.Vault.KeyFile = "vault.key"
			tt.mutate(cfg)

			err := cfg.validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

// TestValidate_RateLimitWithRedis verifies that rate limiting is accepted
// when redis is configured.
func TestValidate_RateLimitWithRedis(t *testing.T) {
	cfg := Defaults()
	cfg.Adapter.BaseURL = "http://lists.local"
	cfg.Vault.KeyFile = "vault.key"
	cfg.Adapter.RateLimit = 10
	cfg.Redis.Address = "localhost:6379"

	assert.NoError(t, cfg.validate())
}

// ── withEnv ───────────────────────────────────────────────────────────────────

// TestWithEnv_ReturnsBuilder verifies the fluent interface.
func TestWithEnv_ReturnsBuilder(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withEnv())
}

// TestWithEnv_ReadsEnvVars verifies that environment variables are picked up.
func TestWithEnv_ReadsEnvVars(t *testing.T) {
	t.Setenv("APP_VERSION", "env-version")
	t.Setenv("VAULT_KEY_FILE", "env.key")

	b := newConfigBuilder()
	b.withEnv()

	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-version", b.configs[0].App.Version)
	assert.Equal(t, "env.key", b.configs[0].Vault.KeyFile)
}

// TestWithEnv_InvalidValue verifies that env parse errors are recorded.
func TestWithEnv_InvalidValue(t *testing.T) {
	t.Setenv("SYNC_MAX_HISTORY", "lots")

	b := newConfigBuilder()
	b.withEnv()

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withFlags ─────────────────────────────────────────────────────────────────

// TestWithFlags_ReturnsBuilder verifies the fluent interface.
func TestWithFlags_ReturnsBuilder(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withFlags(nil))
}

// TestWithFlags_RecordsParseError verifies that a bad flag sets b.err.
func TestWithFlags_RecordsParseError(t *testing.T) {
	b := newConfigBuilder()
	b.withFlags([]string{"-unknown"})
	assert.Error(t, b.err)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

// TestWithJSON_NoOp_WhenNoPathSet verifies that withJSON does nothing when
// no config has a JSONFilePath.
func TestWithJSON_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	b.withJSON()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

// TestWithJSON_AppendsConfig_WhenValidFile verifies that a valid JSON file is
// parsed and appended.
func TestWithJSON_AppendsConfig_WhenValidFile(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"adapter": map[string]any{"base_url": "http://from-json"},
		"vault":   map[string]any{"key_file": "json.key"},
	})

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})
	b.withJSON().withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "http://from-json", cfg.Adapter.BaseURL)
	assert.Equal(t, "json.key", cfg.Vault.KeyFile)
}

// TestWithJSON_MissingFile verifies that a missing file sets b.err.
func TestWithJSON_MissingFile(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: "/does/not/exist.json"})
	b.withJSON()

	assert.Error(t, b.err)
}

// ── full chain ────────────────────────────────────────────────────────────────

// TestBuilderChain_EnvBeatsJSON verifies source priority end to end.
func TestBuilderChain_EnvBeatsJSON(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"adapter": map[string]any{"base_url": "http://from-json"},
		"vault":   map[string]any{"key_file": "json.key"},
		"sync":    map[string]any{"max_history": 3},
	})
	t.Setenv("CONFIG", path)
	t.Setenv("ADAPTER_BASE_URL", "http://from-env")

	cfg, err := newConfigBuilder().withEnv().withFlags(nil).withJSON().withDefaults().build()
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.Adapter.BaseURL)
	assert.Equal(t, "json.key", cfg.Vault.KeyFile)
	assert.Equal(t, 3, cfg.Sync.MaxHistory)
}
