package universe

import (
	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/logger"
)

// Resolve merges the three ticker sources into one Universe:
//
//   - every ticker of the reference dataset (may be nil),
//   - every record of the previous snapshot (may be nil), so a ticker that was
//     once accepted keeps being evaluated,
//   - the static seed list.
//
// The result is normalized, deduplicated and sorted. With all sources empty
// the universe is empty and that is not an error.
func Resolve(ref *models.ReferenceDataset, prior *models.Snapshot, seed []string) models.Universe {
	log := logger.Component("universe")

	var raw []string
	for _, t := range ref.Tickers() {
		raw = append(raw, string(t))
	}
	fromRef := len(raw)

	if prior != nil {
		for _, r := range prior.Records {
			raw = append(raw, string(r.Ticker))
		}
	}
	fromPrior := len(raw) - fromRef

	raw = append(raw, seed...)

	u := models.NewUniverse(raw)
	log.Info().
		Int("reference", fromRef).
		Int("prior_snapshot", fromPrior).
		Int("seed", len(seed)).
		Int("total", u.Len()).
		Msg("universe resolved")
	return u
}
