/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the quotation engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load YAML configuration (defaults apply when the file is absent)
  3. Initialize structured logging
  4. Initialize SQLite store
  5. Initialize the market-rate service (redis cache when configured)
  6. Create API handler with dependencies
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML configuration path (default: config.yml)
  -port    HTTP server port (overrides the config file)
  -db      SQLite database path (overrides the config file)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/quotations.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run with a full configuration file
  ./server -config="./config.yml"

SEE ALSO:
  - config/config.go: Configuration structures and defaults
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/quotation-engine/api"
	"github.com/warp/quotation-engine/config"
	"github.com/warp/quotation-engine/currency"
	"github.com/warp/quotation-engine/quote"
	"github.com/warp/quotation-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "config.yml", "YAML configuration path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	// Configuration: a missing file is fine, defaults carry the server.
	cfg, err := config.LoadConfiguration(*configPath)
	if err != nil {
		if _, statErr := os.Stat(*configPath); os.IsNotExist(statErr) {
			cfg = config.Defaults()
		} else {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger, err := initializeLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Market-rate cache: redis when configured, in-process otherwise.
	var rateCache currency.Cache
	if cfg.Redis.Addr != "" {
		rateCache = currency.NewRedisCache(cfg.Redis.Addr)
		logger.Info("using redis rate cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		rateCache = currency.NewMemoryCache()
	}
	rates := currency.NewService(rateCache, logger, cfg.Redis.TTL)

	policy := quote.NewPolicy(
		cfg.Policy.BenefitCapRatio,
		cfg.Policy.MinUnitInstallment,
		cfg.Policy.MinAddOnInstallment,
	)

	// Initialize handler and router
	handler := api.NewHandler(store, policy, rates, logger)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("db", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// initializeLogger builds the zap logger from the logging configuration.
func initializeLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}
