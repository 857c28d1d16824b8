package valuation

// NotAvailable is the sector label used when the provider reports none.
const NotAvailable = "N/A"

// sectorMap translates the provider (Yahoo/Morningstar) sector taxonomy into
// the B3 sector labels shown to users.
var sectorMap = map[string]string{
	"Basic Materials":        "Materiais Básicos",
	"Communication Services": "Comunicação",
	"Consumer Cyclical":      "Consumo Cíclico",
	"Consumer Defensive":     "Consumo Não Cíclico",
	"Energy":                 "Energia",
	"Financial Services":     "Serviços Financeiros",
	"Healthcare":             "Saúde",
	"Industrials":            "Bens Industriais",
	"Real Estate":            "Construção e Imobiliário",
	"Technology":             "Tecnologia",
	"Utilities":              "Energia",
}

// MapSector is total: mapped sectors are translated, unknown ones pass
// through unchanged and an empty sector becomes NotAvailable.
func MapSector(s string) string {
	if s == "" {
		return NotAvailable
	}
	if v, ok := sectorMap[s]; ok {
		return v
	}
	return s
}
