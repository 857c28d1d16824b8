package models

// HistoryPeriod selects the span of a closing-price series.
type HistoryPeriod string

const (
	Period5Days  HistoryPeriod = "5d"
	Period5Years HistoryPeriod = "5y"
)

// Quote is the provider's per-ticker fundamentals payload, reduced to the
// fields this system consumes. Every field is optional; the Resolve* methods
// apply the fallback priority chain for each logical value.
type Quote struct {
	CurrentPrice               *float64
	RegularMarketPrice         *float64
	PreviousClose              *float64
	RegularMarketPreviousClose *float64
	TrailingEPS                *float64
	ForwardEPS                 *float64
	BookValue                  *float64
	TrailingPE                 *float64
	DividendYield              *float64
	Sector                     string
	ShortName                  string
	LongName                   string
	Volume                     *int64
	RegularMarketVolume        *int64
}

// ResolvePrice picks current price, then regular-market price, then the
// previous close. Zero values are skipped.
func (q Quote) ResolvePrice() (float64, bool) {
	return firstNonZero(q.CurrentPrice, q.RegularMarketPrice, q.PreviousClose)
}

// ResolvePreviousClose picks previous close, then regular-market previous close.
func (q Quote) ResolvePreviousClose() (float64, bool) {
	return firstNonZero(q.PreviousClose, q.RegularMarketPreviousClose)
}

// ResolveEPS picks trailing EPS, then forward EPS.
func (q Quote) ResolveEPS() (float64, bool) {
	return firstNonZero(q.TrailingEPS, q.ForwardEPS)
}

// ResolveName picks short name, then long name, then the ticker itself.
func (q Quote) ResolveName(t Ticker) string {
	switch {
	case q.ShortName != "":
		return q.ShortName
	case q.LongName != "":
		return q.LongName
	default:
		return string(t)
	}
}

// ResolveVolume picks volume, then regular-market volume. Non-positive
// volumes count as absent.
func (q Quote) ResolveVolume() (int64, bool) {
	for _, v := range []*int64{q.Volume, q.RegularMarketVolume} {
		if v != nil && *v > 0 {
			return *v, true
		}
	}
	return 0, false
}

func firstNonZero(vals ...*float64) (float64, bool) {
	for _, v := range vals {
		if v != nil && *v != 0 {
			return *v, true
		}
	}
	return 0, false
}
