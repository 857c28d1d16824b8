// Package reconcile overlays authoritative exchange values onto provider
// records.
package reconcile

import (
	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/logger"
	"github.com/guttosm/b3penny/internal/valuation"
)

// Apply overwrites price, volume and day change of every record present in
// ds, field by field, and returns how many records matched. A price or
// volume that is absent or non-positive leaves the provider value in place.
// The price ceiling is not re-applied.
// A nil dataset is a no-op.
func Apply(records []models.SecurityRecord, ds *models.ReferenceDataset) int {
	if ds == nil {
		return 0
	}
	n := 0
	for i := range records {
		row, ok := ds.Lookup(records[i].Ticker)
		if !ok {
			continue
		}
		n++
		if row.Price != nil && *row.Price > 0 {
			if p := valuation.Round(*row.Price); p != nil {
				records[i].Price = *p
			}
		}
		if row.Volume != nil && *row.Volume > 0 {
			records[i].Volume = models.Int(*row.Volume)
		}
		if row.DayChangePct != nil {
			if v := valuation.Round(*row.DayChangePct); v != nil {
				records[i].DayChangePct = v
			}
		}
	}
	log := logger.Component("reconcile")
	log.Info().Int("reconciled", n).Int("records", len(records)).Msg("reference overlay applied")
	return n
}
