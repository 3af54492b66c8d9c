package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/wordcraft/internal/dependencies/clock"
	"github.com/mcoot/wordcraft/internal/dependencies/random"
	"github.com/mcoot/wordcraft/internal/gateway"
	"github.com/mcoot/wordcraft/internal/services/auth"
	"github.com/mcoot/wordcraft/internal/services/command"
	"github.com/mcoot/wordcraft/internal/services/generator"
	"github.com/mcoot/wordcraft/internal/services/players"
	"github.com/mcoot/wordcraft/internal/services/ratelimit"
	"github.com/mcoot/wordcraft/internal/services/session"
	"github.com/mcoot/wordcraft/internal/services/world"
	"github.com/mcoot/wordcraft/internal/storage"
	"github.com/mcoot/wordcraft/internal/storage/memory"
	redisstorage "github.com/mcoot/wordcraft/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Generator world.Generator

	// Services
	AuthService   *auth.Service
	PlayerService *players.Service
	WorldService  *world.Service
	Sessions      *session.Manager
	RateLimiter   *ratelimit.Limiter
	Router        *command.Router
	Gateway       *gateway.Manager
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// AuthConfig holds configuration for the auth service.
	// A random token secret is generated if none is set.
	AuthConfig auth.Config
	// OpenAIConfig configures room descriptions. Without an API key rooms
	// are described from templates.
	OpenAIConfig    generator.OpenAIConfig
	GeneratorConfig generator.Config
	WorldConfig     world.Config
	RateLimitConfig ratelimit.Config
	GatewayConfig   gateway.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	if len(cfg.AuthConfig.TokenSecret) == 0 {
		logger.Warn("no token secret configured, generating one; tokens will not survive a restart")
		cfg.AuthConfig.TokenSecret = []byte(rnd.String(48, secretAlphabet))
	}

	var describer generator.Describer
	if cfg.OpenAIConfig.APIKey != "" {
		describer = generator.NewOpenAIDescriber(cfg.OpenAIConfig)
		logger.Info("describing rooms with openai", slog.String("model", cfg.OpenAIConfig.Model))
	} else {
		describer = generator.NewTemplateDescriber()
		logger.Info("no openai key configured, describing rooms from templates")
	}
	gen := generator.New(describer, rnd, cfg.GeneratorConfig, logger)

	return newWithDependencies(store, clk, rnd, gen, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	gen world.Generator,
	cfg Config,
	logger *slog.Logger,
) *App {
	authService := auth.New(store, clk, cfg.AuthConfig)
	playerService := players.New(store, logger)
	worldService := world.New(store, gen, cfg.WorldConfig, logger)
	sessions := session.NewManager(clk, logger)
	limiter := ratelimit.New(clk, cfg.RateLimitConfig)

	router := command.NewRouter(authService, playerService, worldService, sessions, logger)
	gw := gateway.New(router, sessions, limiter, playerService, cfg.GatewayConfig, logger)
	router.SetNotifier(gw)

	return &App{
		Storage:       store,
		Clock:         clk,
		Random:        rnd,
		Generator:     gen,
		AuthService:   authService,
		PlayerService: playerService,
		WorldService:  worldService,
		Sessions:      sessions,
		RateLimiter:   limiter,
		Router:        router,
		Gateway:       gw,
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
