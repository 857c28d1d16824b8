package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/b3penny/internal/middleware"
)

// RouterOptions tunes the cross-cutting middlewares and the optional
// frontend.
//
// Fields:
//   - CORSOrigins: allowed origins; empty allows any.
//   - RateLimitPerMinute / RateLimitBurst: per-IP token bucket.
//   - RequestTimeout: deadline attached to every request context.
//   - StaticDir: built frontend to serve for non-API paths; empty disables it.
type RouterOptions struct {
	CORSOrigins        []string
	RateLimitPerMinute int
	RateLimitBurst     int
	RequestTimeout     time.Duration
	StaticDir          string
}

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, CORS, RateLimiter).
//   - Adds a per-request timeout (10 seconds by default).
//   - Mounts Swagger docs (/swagger/*any).
//   - Configures the frontend API (/api) and API v1 routes (/api/v1).
//   - Serves the built frontend with SPA fallback when StaticDir is set.
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.CORS(opts.CORSOrigins),
		middleware.RateLimiter(opts.RateLimitPerMinute, opts.RateLimitBurst),
	)

	// ─── Timeout ──────────────────────────────────
	timeout := opts.RequestTimeout
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── Frontend API ─────────────────────────────
	web := router.Group("/api")
	{
		web.GET("/stocks", handler.GetStocks)
		web.GET("/status", handler.GetStatus)
		web.POST("/update", handler.PostUpdate)
	}

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.GET("/stocks/:ticker", handler.GetStock)
		v1.GET("/history", handler.GetHistory)
		v1.GET("/runs", handler.ListRuns)
	}

	router.NoRoute(spaFallback(opts.StaticDir))

	return router
}
