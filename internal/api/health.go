package api

import "github.com/gin-gonic/gin"

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe; every registered check must pass.
type HealthHandler struct {
	checks map[string]func() error
}

// NewHealthHandler constructs a HealthHandler. Nil checks are skipped, so a
// disabled dependency (e.g. no history database) never degrades readiness.
//
// Parameters:
//   - checks: named probes, typically "snapshot" and "database" (db.Ping).
func NewHealthHandler(checks map[string]func() error) *HealthHandler {
	active := make(map[string]func() error, len(checks))
	for name, fn := range checks {
		if fn != nil {
			active[name] = fn
		}
	}
	return &HealthHandler{checks: active}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: Returns 200 OK when all checks pass, 503 listing the failing ones otherwise.
func (h *HealthHandler) Register(r *gin.Engine) {
	// Liveness probe (just checks if the service is up)
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Readiness probe
	// @Summary      Readiness probe
	// @Description  Returns ready if a snapshot is readable and the history database (when enabled) is reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Failure      503  {object}  map[string]interface{}
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		failed := map[string]string{}
		for name, check := range h.checks {
			if err := check(); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(503, gin.H{"status": "degraded", "checks": failed})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
}
