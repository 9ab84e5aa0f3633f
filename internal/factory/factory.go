package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/touchline/touchline-chat/internal/chat"
	"github.com/touchline/touchline-chat/internal/dependencies/clock"
	"github.com/touchline/touchline-chat/internal/services/directory"
	"github.com/touchline/touchline-chat/internal/services/gate"
	"github.com/touchline/touchline-chat/internal/services/history"
	"github.com/touchline/touchline-chat/internal/storage"
	"github.com/touchline/touchline-chat/internal/storage/memory"
	redisstorage "github.com/touchline/touchline-chat/internal/storage/redis"
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
	Clock clock.Clock

	// Services
	DirectoryService *directory.Service
	GateService      *gate.Service
	HistoryService   *history.Service
	HubManager       *chat.HubManager
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

	clk := clock.New()

	return newWithDependencies(store, clk, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, logger *slog.Logger) *App {
	directoryService := directory.New(store, clk, logger)
	gateService := gate.New(store, clk, logger)
	historyService := history.New(store, clk, logger)
	hubManager := chat.NewHubManager(logger)

	return &App{
		Storage:          store,
		Clock:            clk,
		DirectoryService: directoryService,
		GateService:      gateService,
		HistoryService:   historyService,
		HubManager:       hubManager,
	}
}
