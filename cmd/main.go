package main

//
//  @title           b3penny API
//  @version         1.0
//  @description     Snapshot of low-priced B3 equities with valuation indicators.
//  @termsOfService  https://github.com/guttosm/b3penny
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/b3penny
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        stocks
//  @tag.description Current snapshot and on-demand refresh
//
//  @tag.name        history
//  @tag.description Persisted runs and per-ticker price history
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/b3penny/config"
	_ "github.com/guttosm/b3penny/docs" // swagger docs
	"github.com/guttosm/b3penny/internal/app"
	"github.com/guttosm/b3penny/internal/logger"
	"github.com/guttosm/b3penny/internal/pipeline"
	"github.com/guttosm/b3penny/internal/service"
	"github.com/guttosm/b3penny/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Stops the scheduler, waits for a running update and closes the database.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runUpdate executes a single snapshot build through the same Updater the
// API uses, so panics and outcomes are handled alike. The run history is
// recorded when enabled.
func runUpdate(ctx context.Context, cfg config.Config, params pipeline.Params) (*pipeline.Result, error) {
	var repo storage.SnapshotRepository
	if cfg.History.Enabled {
		db, err := app.InitPostgres(cfg)
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()
		repo = storage.NewSnapshotRepository(db)
	}
	updater := service.NewUpdater(ctx, app.NewPipeline(cfg, repo), params)
	return updater.RunNow(ctx, 0)
}

// main is the entry point of the b3penny application.
//
// Modes (selected via --mode flag):
//   - update: Builds the snapshot once and exits (non-zero when nothing could be collected).
//   - api:    Serves the snapshot API and the frontend, refreshing during trading hours.
//
// Flags:
//   - --mode:      Execution mode ("update" or "api"). Default: "update".
//   - --max-price: Price ceiling. Defaults to MAX_PRICE.
//   - --workers:   Provider fetch concurrency. Defaults to WORKERS.
//   - --port:      Port for the API server. Defaults to SERVER_PORT.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "update", "Mode: update or api")
	maxPrice := flag.Float64("max-price", config.AppConfig.Snapshot.MaxPrice, "Price ceiling for accepted securities")
	workers := flag.Int("workers", config.AppConfig.Snapshot.Workers, "How many tickers to fetch concurrently")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	config.AppConfig.Snapshot.MaxPrice = *maxPrice
	config.AppConfig.Snapshot.Workers = *workers

	switch *mode {
	case "update":
		logger.L().Info().Float64("maxPrice", *maxPrice).Int("workers", *workers).Msg("running update")

		runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		res, err := runUpdate(runCtx, config.AppConfig, app.DefaultParams(config.AppConfig))
		stop()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("update failed")
		}
		logger.L().Info().
			Int("records", res.Snapshot.TotalCount).
			Str("source", res.Snapshot.Source).
			Str("output", config.AppConfig.Snapshot.OutputPath).
			Dur("elapsed", res.Elapsed).
			Msg("update completed successfully")

	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
