package factory

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/mcoot/wordcraft/internal/gateway"
	"github.com/mcoot/wordcraft/internal/services/auth"
	"github.com/mcoot/wordcraft/internal/services/generator"
	"github.com/mcoot/wordcraft/internal/services/ratelimit"
	"github.com/mcoot/wordcraft/internal/services/world"
	redisstorage "github.com/mcoot/wordcraft/internal/storage/redis"
)

// ConfigFromEnv builds a factory Config from environment variables.
// Unset variables keep each component's defaults.
func ConfigFromEnv(logger *slog.Logger) (Config, error) {
	cfg := Config{
		Logger:          logger,
		StorageType:     os.Getenv("STORAGE_TYPE"),
		AuthConfig:      auth.DefaultConfig(),
		OpenAIConfig:    generator.DefaultOpenAIConfig(),
		GeneratorConfig: generator.DefaultConfig(),
		WorldConfig:     world.DefaultConfig(),
		RateLimitConfig: ratelimit.DefaultConfig(),
		GatewayConfig:   gateway.DefaultConfig(),
	}

	if cfg.StorageType == StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return Config{}, oops.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		cfg.AuthConfig.TokenSecret = []byte(secret)
	}
	if admins := os.Getenv("ADMIN_USERS"); admins != "" {
		for name := range strings.SplitSeq(admins, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.AuthConfig.AdminUsernames = append(cfg.AuthConfig.AdminUsernames, name)
			}
		}
	}

	cfg.OpenAIConfig.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIConfig.BaseURL = os.Getenv("OPENAI_BASE_URL")
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAIConfig.Model = model
	}

	var err error
	if cfg.AuthConfig.TokenTTL, err = envDuration("TOKEN_TTL", cfg.AuthConfig.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.WorldConfig.GenerationTimeout, err = envDuration("GENERATION_TIMEOUT", cfg.WorldConfig.GenerationTimeout); err != nil {
		return Config{}, err
	}
	if cfg.GeneratorConfig.RequestsPerSecond, err = envFloat("GENERATION_RPS", cfg.GeneratorConfig.RequestsPerSecond); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitConfig.Messages, err = envInt("RATE_LIMIT_MESSAGES", cfg.RateLimitConfig.Messages); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitConfig.Window, err = envDuration("RATE_LIMIT_WINDOW", cfg.RateLimitConfig.Window); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, oops.With("key", key).Wrapf(err, "invalid duration %q", raw)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, oops.With("key", key).Errorf("invalid positive integer %q", raw)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return 0, oops.With("key", key).Errorf("invalid positive number %q", raw)
	}
	return f, nil
}
