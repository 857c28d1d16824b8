package valuation

import (
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places kept for every derived indicator.
const Precision = 2

// Round rounds v half away from zero to Precision places. Non-finite input
// yields nil so NaN/Inf never reach a snapshot.
func Round(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := decimal.NewFromFloat(v).Round(Precision).InexactFloat64()
	return &r
}

// ChangePct returns (last/first - 1) * 100 rounded, or nil when first is zero
// or the result is not finite.
func ChangePct(first, last float64) *float64 {
	if first == 0 {
		return nil
	}
	return Round((last/first - 1) * 100)
}

// SeriesChangePct applies ChangePct to the first and last observation of a
// closing-price series. Fewer than two points yields nil.
func SeriesChangePct(closes []float64) *float64 {
	if len(closes) < 2 {
		return nil
	}
	return ChangePct(closes[0], closes[len(closes)-1])
}
