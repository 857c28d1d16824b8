package models

// SecurityRecord is the canonical per-security output unit of a snapshot.
//
// Optional indicators are pointers: nil means "not computable" and is omitted
// from the JSON document. They are never defaulted to zero.
//
// swagger:model SecurityRecord
type SecurityRecord struct {
	Ticker             Ticker   `json:"ticker" example:"HBOR3"`
	Name               string   `json:"name" example:"Helbor Empreendimentos S.A."`
	Price              float64  `json:"price" example:"3.29"`
	Sector             string   `json:"sector" example:"Construção e Imobiliário"`
	DividendYield      *float64 `json:"dividendYield,omitempty" example:"4.5"`
	PriceToEarnings    *float64 `json:"priceToEarnings,omitempty" example:"10.52"`
	PriceToBook        *float64 `json:"priceToBook,omitempty" example:"0.16"`
	DayChangePct       *float64 `json:"dayChangePct,omitempty" example:"-1.2"`
	WeekChangePct      *float64 `json:"weekChangePct,omitempty" example:"4.11"`
	FiveYearChangePct  *float64 `json:"fiveYearChangePct,omitempty" example:"-69.67"`
	ValuationUpsidePct *float64 `json:"valuationUpsidePct,omitempty" example:"269.04"`
	Volume             *int64   `json:"volume,omitempty" example:"2162600"`
	LastUpdated        string   `json:"lastUpdated" example:"21/02/2026 21:06"`
}

// VolumeOrZero returns the traded volume, treating an absent value as zero.
func (r SecurityRecord) VolumeOrZero() int64 {
	if r.Volume == nil {
		return 0
	}
	return *r.Volume
}

// Float returns a pointer to v. Handy for building optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }
