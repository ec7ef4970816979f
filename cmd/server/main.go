/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the overtime engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, OT_* variables), then apply flags
  2. Build the logger
  3. Initialize SQLite store
  4. Start the shared evaluation worker pool
  5. Create API handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port      HTTP server port                  OT_PORT (default: 8080)
  -db        SQLite database path              OT_DB_PATH (default: overtime.db)
             Use ":memory:" for in-memory database
  -log-level debug, info, warn, error          OT_LOG_LEVEL (default: info)
  -log-file  Rotated log file                  OT_LOG_FILE
  -policy    Policy used when none is named    OT_DEFAULT_POLICY (default: default)
  -workers   Evaluation goroutines, 0 = serial OT_WORKERS (default: 4)
  -company   Company for holiday lookups       OT_COMPANY_ID

  OT_CORS_ORIGINS (comma separated) has no flag. A .env file in the
  working directory is read first; exported variables win over it.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Drain the worker pool
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/overtime.db"

  # Run with in-memory database and debug logs
  ./server -db=":memory:" -log-level=debug

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment variables
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/overtime-engine/api"
	"github.com/warp/overtime-engine/config"
	"github.com/warp/overtime-engine/generic"
	"github.com/warp/overtime-engine/logging"
	"github.com/warp/overtime-engine/store/sqlite"
	"github.com/warp/overtime-engine/workerpool"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Rotated log file")
	fs.StringVar(&cfg.DefaultPolicy, "policy", cfg.DefaultPolicy, "Policy used when a request names none")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Evaluation goroutines (0 evaluates serially)")
	fs.StringVar(&cfg.CompanyID, "company", cfg.CompanyID, "Company for holiday lookups")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile, Prefix: "server"})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer closer.Close()

	// Route chi's request log through the same logger.
	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logger.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel}),
		NoColor: true,
	})

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store)
	handler.Logger = logger
	handler.CompanyID = cfg.CompanyID
	handler.DefaultPolicyID = generic.PolicyID(cfg.DefaultPolicy)
	if cfg.Workers > 0 {
		handler.Pool = workerpool.New(cfg.Workers, cfg.Workers*4)
		defer handler.Pool.Close()
	}

	// Load existing policies into cache
	if err := handler.LoadPolicies(context.Background()); err != nil {
		logger.Warn("failed to load policies", "err", err)
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handler, cfg.CORSOrigins...),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", "http://localhost"+cfg.Addr(), "db", cfg.DBPath, "workers", cfg.Workers)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
