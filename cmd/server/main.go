/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the tax engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Initialize the JSON logger
  3. Build the strategy registry (built-in or REGIME_TABLE_PATH)
  4. Select the people directory (remote service or SQLite)
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DATABASE_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  PORT, DATABASE_PATH, LOG_LEVEL, PEOPLE_SERVICE_URL, PEOPLE_CACHE_TTL,
  PEOPLE_RATE_LIMIT, REGIME_TABLE_PATH, CORS_ORIGINS, API_RATE_LIMIT.
  See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Local directory in memory
  ./server -db=":memory:"

  # People from a remote service, custom regime tables
  PEOPLE_SERVICE_URL=http://people:8080 REGIME_TABLE_PATH=./regimes.yaml ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - factory/regime.go: Regime table format
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/tax-engine/api"
	"github.com/warp/tax-engine/config"
	"github.com/warp/tax-engine/factory"
	"github.com/warp/tax-engine/logging"
	"github.com/warp/tax-engine/people"
	"github.com/warp/tax-engine/store/sqlite"
	"github.com/warp/tax-engine/tax"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags override the environment
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	flag.Parse()
	cfg.Port = *port
	cfg.DatabasePath = *dbPath

	logger := logging.Init(cfg.LogLevel)

	registry, err := buildRegistry(cfg)
	if err != nil {
		logger.Error("failed to load regime tables", "path", cfg.RegimeTablePath, "error", err)
		os.Exit(1)
	}

	calc, err := tax.NewCalculator(registry, logger)
	if err != nil {
		logger.Error("failed to build calculator", "error", err)
		os.Exit(1)
	}

	dir, closeDir, err := buildDirectory(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize people directory", "error", err)
		os.Exit(1)
	}
	defer closeDir()

	handler := api.NewHandler(calc, dir)
	router := api.NewRouter(handler, api.RouterOptions{
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimitRPS: cfg.APIRateLimit,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "api", fmt.Sprintf("http://localhost:%d/api", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func buildRegistry(cfg config.Config) (*tax.Registry, error) {
	if cfg.RegimeTablePath == "" {
		return tax.NewRegistry(tax.DefaultStrategies()...)
	}
	return factory.LoadRegimeTable(cfg.RegimeTablePath)
}

// buildDirectory prefers the remote people service when configured.
func buildDirectory(cfg config.Config, logger *slog.Logger) (people.Directory, func(), error) {
	if cfg.PeopleServiceURL != "" {
		logger.Info("using remote people directory", "url", cfg.PeopleServiceURL)
		client := people.NewClient(cfg.PeopleServiceURL, people.ClientOptions{
			CacheTTL:          cfg.PeopleCacheTTL,
			RequestsPerSecond: cfg.PeopleRateLimit,
			Logger:            logger,
		})
		return client, func() {}, nil
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using sqlite people directory", "path", cfg.DatabasePath)
	return store, func() { store.Close() }, nil
}
