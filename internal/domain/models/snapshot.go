package models

// Snapshot is the persisted artifact of one run. Field names are consumed by
// the web front end and must stay stable.
//
// swagger:model Snapshot
type Snapshot struct {
	GeneratedAt   string           `json:"generatedAt" example:"21/02/2026 21:06"`
	ReferenceDate string           `json:"referenceDate" example:"2026-02-20"`
	Source        string           `json:"source" example:"COTAHIST (rb3) + Yahoo Finance"`
	TotalCount    int              `json:"totalCount" example:"36"`
	Records       []SecurityRecord `json:"records"`
}

// Find returns the record for ticker t, if present.
func (s *Snapshot) Find(t Ticker) (SecurityRecord, bool) {
	if s == nil {
		return SecurityRecord{}, false
	}
	for _, r := range s.Records {
		if r.Ticker == t {
			return r, true
		}
	}
	return SecurityRecord{}, false
}
