package dto

import "time"

// StatusResponse is returned by GET /api/status.
//
// Timestamps are empty when no snapshot has been written yet. LastRun is
// omitted until the first update finishes in this process.
type StatusResponse struct {
	Available        bool           `json:"available" example:"true"`
	GeneratedAt      string         `json:"generatedAt,omitempty" example:"21/02/2026 21:06"`
	ReferenceDate    string         `json:"referenceDate,omitempty" example:"2026-02-20"`
	Source           string         `json:"source,omitempty" example:"COTAHIST (rb3) + Yahoo Finance"`
	TotalCount       int            `json:"totalCount" example:"36"`
	UpdateInProgress bool           `json:"updateInProgress" example:"false"`
	LastRun          *LastRunStatus `json:"lastRun,omitempty"`
}

// LastRunStatus is the outcome of the latest finished update.
type LastRunStatus struct {
	FinishedAt time.Time `json:"finishedAt"`
	Success    bool      `json:"success" example:"false"`
	Records    int       `json:"records" example:"36"`
	Error      string    `json:"error,omitempty" example:"no security met the criteria"`
}
