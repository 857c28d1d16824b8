package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/b3penny/config"
	"github.com/guttosm/b3penny/internal/api"
	"github.com/guttosm/b3penny/internal/logger"
	"github.com/guttosm/b3penny/internal/pipeline"
	"github.com/guttosm/b3penny/internal/provider"
	"github.com/guttosm/b3penny/internal/reference"
	"github.com/guttosm/b3penny/internal/scheduler"
	"github.com/guttosm/b3penny/internal/service"
	"github.com/guttosm/b3penny/internal/snapshot"
	"github.com/guttosm/b3penny/internal/storage"
)

// requestTimeout is attached to every API request context.
const requestTimeout = 10 * time.Second

// NewProvider builds the market data client from configuration.
func NewProvider(cfg config.Config) *provider.Client {
	return provider.NewClient(
		provider.WithBaseURL(cfg.Provider.BaseURL),
		provider.WithSymbolSuffix(cfg.Provider.SymbolSuffix),
		provider.WithTimeout(cfg.Provider.Timeout),
		provider.WithRateLimit(cfg.Provider.RateLimit),
		provider.WithCrumb(cfg.Provider.Crumb, provider.DefaultCookieURL),
	)
}

// NewReferenceLoader builds the COTAHIST generator wrapper.
func NewReferenceLoader(cfg config.Config) *reference.Loader {
	return reference.NewLoader(reference.Config{
		Enabled:     cfg.Reference.Enabled,
		Interpreter: cfg.Reference.Interpreter,
		Script:      cfg.Reference.Script,
		OutputPath:  cfg.Reference.OutputPath,
		MaxPrice:    cfg.Reference.MaxPrice,
	})
}

// NewPipeline wires the reference loader, the provider client and, when repo
// is not nil, the run history recorder.
func NewPipeline(cfg config.Config, repo storage.SnapshotRepository) *pipeline.Pipeline {
	var opts []pipeline.Option
	if repo != nil {
		opts = append(opts, pipeline.WithRecorder(repo))
	}
	return pipeline.New(
		pipeline.Config{
			OutputPath: cfg.Snapshot.OutputPath,
			SeedFile:   cfg.Snapshot.SeedFile,
			Location:   cfg.Location(),
		},
		NewReferenceLoader(cfg),
		NewProvider(cfg),
		opts...,
	)
}

// DefaultParams returns the run parameters from configuration.
func DefaultParams(cfg config.Config) pipeline.Params {
	return pipeline.Params{MaxPrice: cfg.Snapshot.MaxPrice, Workers: cfg.Snapshot.Workers}
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL when the run history is enabled.
//   - Builds the pipeline and the single-flight Updater shared by the API and the scheduler.
//   - Creates the snapshot service, the HTTP handler and the router.
//   - Registers health and readiness probes.
//   - Starts the trading-hours scheduler when enabled.
//
// The cleanup function stops the scheduler, cancels and waits for any
// background run, then closes the database.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	var (
		db   *sql.DB
		repo storage.SnapshotRepository
		err  error
	)
	if cfg.History.Enabled {
		// indirection for unit testing
		db, err = postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		repo = storage.NewSnapshotRepository(db)
	}
	closeDB := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	updater := service.NewUpdater(baseCtx, NewPipeline(cfg, repo), DefaultParams(cfg))

	svc := service.NewSnapshotService(cfg.Snapshot.OutputPath, repo)
	handler := api.NewHandler(svc, updater)

	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins:        cfg.Server.CORSOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		RateLimitBurst:     cfg.Server.RateLimitBurst,
		RequestTimeout:     requestTimeout,
		StaticDir:          cfg.Server.StaticDir,
	})

	// Register health and readiness probes
	checks := map[string]func() error{
		"snapshot": func() error {
			_, err := snapshot.Read(cfg.Snapshot.OutputPath)
			return err
		},
	}
	if db != nil {
		checks["database"] = db.Ping
	}
	api.NewHealthHandler(checks).Register(router)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(cfg.Scheduler.Schedule, cfg.Location(), updater)
		if err != nil {
			cancel()
			closeDB()
			return nil, nil, fmt.Errorf("failed to initialize scheduler: %w", err)
		}
		sched.Start()
	}

	logger.L().Info().
		Bool("history", db != nil).
		Bool("scheduler", sched != nil).
		Str("output", cfg.Snapshot.OutputPath).
		Msg("application initialized")

	cleanup := func() {
		if sched != nil {
			<-sched.Stop().Done()
		}
		cancel()
		updater.Wait()
		closeDB()
	}

	return router, cleanup, nil
}
