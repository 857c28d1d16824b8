package dto

import "github.com/guttosm/b3penny/internal/domain/models"

// HistoryResponse is returned by GET /api/v1/history.
type HistoryResponse struct {
	Ticker string                `json:"ticker" example:"HBOR3"`
	Points []models.HistoryPoint `json:"points"`
}

// RunsResponse is returned by GET /api/v1/runs.
type RunsResponse struct {
	Runs []models.RunSummary `json:"runs"`
}
