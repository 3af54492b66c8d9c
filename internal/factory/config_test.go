package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordcraft/internal/testutil"
)

var configKeys = []string{
	"STORAGE_TYPE", "REDIS_URL", "TOKEN_SECRET", "ADMIN_USERS",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	"TOKEN_TTL", "GENERATION_TIMEOUT", "GENERATION_RPS",
	"RATE_LIMIT_MESSAGES", "RATE_LIMIT_WINDOW",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := ConfigFromEnv(testutil.NopLogger())
	require.NoError(t, err)

	assert.Empty(t, cfg.StorageType)
	assert.Nil(t, cfg.RedisConfig)
	assert.Empty(t, cfg.AuthConfig.TokenSecret)
	assert.Empty(t, cfg.OpenAIConfig.APIKey)
	assert.Equal(t, 24*time.Hour, cfg.AuthConfig.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.WorldConfig.GenerationTimeout)
	assert.Equal(t, 5, cfg.RateLimitConfig.Messages)
	assert.Equal(t, time.Second, cfg.RateLimitConfig.Window)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("ADMIN_USERS", "root, keeper,,")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("GENERATION_RPS", "0.5")
	t.Setenv("RATE_LIMIT_MESSAGES", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "3s")

	cfg, err := ConfigFromEnv(testutil.NopLogger())
	require.NoError(t, err)

	require.NotNil(t, cfg.RedisConfig)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisConfig.URL)
	assert.Equal(t, []byte("s3cret"), cfg.AuthConfig.TokenSecret)
	assert.Contains(t, cfg.AuthConfig.AdminUsernames, "root")
	assert.Contains(t, cfg.AuthConfig.AdminUsernames, "keeper")
	assert.NotContains(t, cfg.AuthConfig.AdminUsernames, "")
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIConfig.Model)
	assert.Equal(t, 2*time.Hour, cfg.AuthConfig.TokenTTL)
	assert.InDelta(t, 0.5, cfg.GeneratorConfig.RequestsPerSecond, 1e-9)
	assert.Equal(t, 10, cfg.RateLimitConfig.Messages)
	assert.Equal(t, 3*time.Second, cfg.RateLimitConfig.Window)
}

func TestConfigFromEnvErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORAGE_TYPE", "redis"},
		{"TOKEN_TTL", "forever"},
		{"RATE_LIMIT_MESSAGES", "0"},
		{"GENERATION_RPS", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := ConfigFromEnv(testutil.NopLogger())
			assert.Error(t, err)
		})
	}
}
