package models

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary describes one persisted snapshot run.
//
// swagger:model RunSummary
type RunSummary struct {
	ID            uuid.UUID `json:"id"`
	GeneratedAt   time.Time `json:"generatedAt"`
	ReferenceDate string    `json:"referenceDate"`
	Source        string    `json:"source"`
	TotalCount    int       `json:"totalCount"`
}

// HistoryPoint is the state of a ticker as recorded by one run.
//
// swagger:model HistoryPoint
type HistoryPoint struct {
	RunID              uuid.UUID `json:"runId"`
	GeneratedAt        time.Time `json:"generatedAt"`
	Price              float64   `json:"price" example:"3.29"`
	Volume             *int64    `json:"volume,omitempty"`
	DayChangePct       *float64  `json:"dayChangePct,omitempty"`
	ValuationUpsidePct *float64  `json:"valuationUpsidePct,omitempty"`
}
