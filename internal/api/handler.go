package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/b3penny/internal/domain/dto"
	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/pipeline"
	"github.com/guttosm/b3penny/internal/service"
)

const (
	dateLayout         = "2006-01-02"
	defaultHistoryDays = 30
	defaultRunsLimit   = 20
	maxRunsLimit       = 200
)

// UpdateTrigger starts background snapshot runs. Implemented by
// service.Updater.
type UpdateTrigger interface {
	Start(maxPrice float64) error
	InProgress() bool
	LastRun() (service.LastRun, bool)
}

// Handler provides HTTP handlers for the snapshot endpoints.
//
// Responsibilities:
//   - Validate path, query and body parameters
//   - Delegate to the snapshot service or the updater
//   - Map service errors onto HTTP status codes with dto.ErrorResponse
type Handler struct {
	svc     service.SnapshotService
	updater UpdateTrigger
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.SnapshotService, updater UpdateTrigger) *Handler {
	return &Handler{svc: svc, updater: updater}
}

// GetStocks godoc
// @Summary      Current snapshot
// @Description  Returns the latest snapshot with every accepted security, sorted by volume
// @Tags         stocks
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Failure      404  {object}  dto.ErrorResponse  "No snapshot yet"
// @Failure      500  {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/stocks [get]
func (h *Handler) GetStocks(c *gin.Context) {
	snap, err := h.svc.Current(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "failed to read snapshot")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetStatus godoc
// @Summary      Snapshot status
// @Description  Reports whether a snapshot exists, its metadata, whether an update is running and how the last one ended
// @Tags         stocks
// @Produce      json
// @Success      200  {object}  dto.StatusResponse
// @Failure      500  {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	resp := dto.StatusResponse{}
	if h.updater != nil {
		resp.UpdateInProgress = h.updater.InProgress()
		if last, ok := h.updater.LastRun(); ok {
			resp.LastRun = &dto.LastRunStatus{FinishedAt: last.FinishedAt, Success: last.Err == nil, Records: last.Records}
			if last.Err != nil {
				resp.LastRun.Error = last.Err.Error()
			}
		}
	}

	snap, err := h.svc.Current(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrSnapshotNotFound):
		// nothing written yet
	case err != nil:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to read snapshot", err))
		return
	default:
		resp.Available = true
		resp.GeneratedAt = snap.GeneratedAt
		resp.ReferenceDate = snap.ReferenceDate
		resp.Source = snap.Source
		resp.TotalCount = snap.TotalCount
	}
	c.JSON(http.StatusOK, resp)
}

// PostUpdate godoc
// @Summary      Trigger an update
// @Description  Starts a background snapshot run. Only one run may execute at a time.
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.UpdateRequest   false  "Optional price ceiling"
// @Success      202   {object}  dto.UpdateResponse
// @Failure      400   {object}  dto.ErrorResponse  "Bad Request"
// @Failure      409   {object}  dto.ErrorResponse  "Update already running"
// @Failure      503   {object}  dto.ErrorResponse  "Updates disabled"
// @Router       /api/update [post]
func (h *Handler) PostUpdate(c *gin.Context) {
	if h.updater == nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("updates are disabled", nil))
		return
	}

	var req dto.UpdateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid request body", err))
			return
		}
	}

	// An absent ceiling is passed as zero, which keeps the configured default.
	var maxPrice float64
	if req.MaxPrice != nil {
		if *req.MaxPrice <= 0 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("maxPrice must be greater than zero", nil))
			return
		}
		maxPrice = *req.MaxPrice
	}

	err := h.updater.Start(maxPrice)
	switch {
	case errors.Is(err, service.ErrUpdateInProgress):
		c.JSON(http.StatusConflict, dto.NewErrorResponse("update already in progress", nil))
	case errors.Is(err, pipeline.ErrInvalidParams):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("maxPrice must be greater than zero", err))
	case err != nil:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to start update", err))
	default:
		c.JSON(http.StatusAccepted, dto.UpdateResponse{Success: true, Message: "update started"})
	}
}

// GetStock godoc
// @Summary      Single security
// @Description  Returns the current snapshot record for one ticker
// @Tags         stocks
// @Produce      json
// @Param        ticker  path      string  true  "Stock ticker" example(HBOR3)
// @Success      200     {object}  models.SecurityRecord
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404     {object}  dto.ErrorResponse  "Not Found"
// @Failure      500     {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/stocks/{ticker} [get]
func (h *Handler) GetStock(c *gin.Context) {
	ticker, ok := models.NormalizeTicker(c.Param("ticker"))
	if !ok {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", nil))
		return
	}
	rec, err := h.svc.GetRecord(c.Request.Context(), ticker)
	if err != nil {
		h.writeError(c, err, "failed to read snapshot")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetHistory godoc
// @Summary      Ticker history
// @Description  Returns the recorded price of a ticker across persisted runs. Defaults to the last 30 days.
// @Tags         history
// @Produce      json
// @Param        ticker       query     string  true   "Stock ticker" example(HBOR3)
// @Param        data_inicio  query     string  false  "Start date in YYYY-MM-DD" example(2026-09-01)
// @Param        data_fim     query     string  false  "End date in YYYY-MM-DD (inclusive)" example(2026-09-30)
// @Success      200          {object}  dto.HistoryResponse
// @Failure      400          {object}  dto.ErrorResponse  "Bad Request"
// @Failure      503          {object}  dto.ErrorResponse  "History disabled"
// @Failure      500          {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	// ─── Validate "ticker" param ──────────────────────────────
	ticker, ok := models.NormalizeTicker(c.Query("ticker"))
	if !ok {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", nil))
		return
	}

	// ─── Parse optional date range ───────────────────────────
	startDate, err := parseDate(c.Query("data_inicio"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid data_inicio format, expected YYYY-MM-DD", err))
		return
	}
	endDate, err := parseDate(c.Query("data_fim"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid data_fim format, expected YYYY-MM-DD", err))
		return
	}
	if startDate == nil && endDate == nil {
		today := time.Now().UTC()
		start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -defaultHistoryDays)
		startDate = &start
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("data_fim must not be before data_inicio", nil))
		return
	}

	points, err := h.svc.GetHistory(c.Request.Context(), ticker, startDate, endDate)
	if err != nil {
		h.writeError(c, err, "failed to fetch history")
		return
	}
	if points == nil {
		points = []models.HistoryPoint{}
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Ticker: string(ticker), Points: points})
}

// ListRuns godoc
// @Summary      Recent runs
// @Description  Lists the most recent persisted snapshot runs, newest first
// @Tags         history
// @Produce      json
// @Param        limit  query     int  false  "Maximum runs to return (1-200)" example(20)
// @Success      200    {object}  dto.RunsResponse
// @Failure      400    {object}  dto.ErrorResponse  "Bad Request"
// @Failure      503    {object}  dto.ErrorResponse  "History disabled"
// @Failure      500    {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/runs [get]
func (h *Handler) ListRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxRunsLimit {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("limit must be between 1 and 200", err))
			return
		}
		limit = n
	}

	runs, err := h.svc.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []models.RunSummary{}
	}
	c.JSON(http.StatusOK, dto.RunsResponse{Runs: runs})
}

// writeError maps service sentinels onto status codes; anything else is a 500.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("snapshot not available", nil))
	case errors.Is(err, service.ErrTickerNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("ticker not found", nil))
	case errors.Is(err, service.ErrHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("history is disabled", nil))
	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(fallback, err))
	}
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
