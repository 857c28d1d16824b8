package valuation

import "math"

// grahamMultiplier is Graham's 15 (P/E) x 1.5 (P/B) ceiling.
const grahamMultiplier = 22.5

// IntrinsicValue returns the Graham number sqrt(22.5 * eps * bvps).
// ok is false unless both inputs are strictly positive.
func IntrinsicValue(eps, bvps float64) (float64, bool) {
	if eps <= 0 || bvps <= 0 {
		return 0, false
	}
	return math.Sqrt(grahamMultiplier * eps * bvps), true
}

// GrahamUpside is the percentage gap between the Graham number and price:
//
//	(sqrt(22.5 * eps * bvps) / price - 1) * 100
//
// It is nil whenever any input is missing or not strictly positive.
func GrahamUpside(eps, bvps, price *float64) *float64 {
	if eps == nil || bvps == nil || price == nil || *price <= 0 {
		return nil
	}
	iv, ok := IntrinsicValue(*eps, *bvps)
	if !ok {
		return nil
	}
	return Round((iv/(*price) - 1) * 100)
}
