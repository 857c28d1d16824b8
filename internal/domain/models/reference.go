package models

// ReferenceRow carries the exchange-sourced values for one ticker.
// Any field may be absent in the generator output.
type ReferenceRow struct {
	Price        *float64
	Volume       *int64
	DayChangePct *float64
}

// ReferenceDataset is the canonical, indexed-by-ticker form of the
// authoritative COTAHIST data, regardless of how the generator laid it out.
type ReferenceDataset struct {
	ReferenceDate string
	Total         int
	Rows          map[Ticker]ReferenceRow
}

// Lookup returns the reference row for t. A nil dataset never matches.
func (d *ReferenceDataset) Lookup(t Ticker) (ReferenceRow, bool) {
	if d == nil {
		return ReferenceRow{}, false
	}
	row, ok := d.Rows[t]
	return row, ok
}

// Tickers returns the dataset keys in no particular order.
func (d *ReferenceDataset) Tickers() []Ticker {
	if d == nil {
		return nil
	}
	out := make([]Ticker, 0, len(d.Rows))
	for t := range d.Rows {
		out = append(out, t)
	}
	return out
}
