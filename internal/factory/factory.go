// Package factory wires the application components together.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/nitzanf/fakergame-go/internal/comms"
	"github.com/nitzanf/fakergame-go/internal/dependencies/clock"
	"github.com/nitzanf/fakergame-go/internal/dependencies/random"
	"github.com/nitzanf/fakergame-go/internal/game"
	"github.com/nitzanf/fakergame-go/internal/registry"
	"github.com/nitzanf/fakergame-go/internal/storage"
	"github.com/nitzanf/fakergame-go/internal/storage/memory"
	redisstorage "github.com/nitzanf/fakergame-go/internal/storage/redis"
	"github.com/nitzanf/fakergame-go/internal/tasks"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Components
	TaskService *tasks.Service
	Registry    *registry.Registry
	Comms       *comms.Server
	Game        *game.Driver
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
	// CommsConfig holds the TCP listener settings
	// If zero value, defaults to comms.DefaultConfig()
	CommsConfig comms.Config
	// GameConfig holds the game rules and pauses
	// If zero value, defaults to game.DefaultConfig()
	GameConfig game.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
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

	commsCfg := cfg.CommsConfig
	if commsCfg.Addr == "" {
		commsCfg = comms.DefaultConfig()
	}
	gameCfg := cfg.GameConfig
	if gameCfg.MinPlayers == 0 {
		gameCfg = game.DefaultConfig()
	}

	return newWithDependencies(store, commsCfg, gameCfg, clock.New(), random.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	commsCfg comms.Config,
	gameCfg game.Config,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	taskService := tasks.New(store, rnd, logger)
	reg := registry.New()
	commsServer := comms.New(commsCfg, reg, rnd, logger)
	driver := game.New(gameCfg, commsServer, commsServer.Events(), reg, taskService, clk, rnd, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		TaskService: taskService,
		Registry:    reg,
		Comms:       commsServer,
		Game:        driver,
	}
}
