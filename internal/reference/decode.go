package reference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/guttosm/b3penny/internal/domain/models"
)

// document mirrors the generator output. "acoes" is either an array of rows
// or an object of parallel columns (R data.frame serialized column-wise).
type document struct {
	Acoes          json.RawMessage `json:"acoes"`
	DataReferencia string          `json:"data_referencia"`
	Total          optNumber       `json:"total"`
}

type row struct {
	Ticker    optString `json:"ticker"`
	Preco     optNumber `json:"preco"`
	Volume    optNumber `json:"volume"`
	VarDiaPct optNumber `json:"var_dia_pct"`
}

type columns struct {
	Ticker    []optString `json:"ticker"`
	Preco     []optNumber `json:"preco"`
	Volume    []optNumber `json:"volume"`
	VarDiaPct []optNumber `json:"var_dia_pct"`
}

// Decode parses a generator document and normalizes both layouts into one
// indexed-by-ticker dataset.
func Decode(data []byte) (*models.ReferenceDataset, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	ds := &models.ReferenceDataset{
		ReferenceDate: strings.TrimSpace(doc.DataReferencia),
		Rows:          map[models.Ticker]models.ReferenceRow{},
	}

	raw := bytes.TrimSpace(doc.Acoes)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return nil, errors.New("decode document: missing \"acoes\"")
	case raw[0] == '[':
		var rows []row
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode row-oriented acoes: %w", err)
		}
		for _, r := range rows {
			addRow(ds, r.Ticker, r.Preco, r.Volume, r.VarDiaPct)
		}
	case raw[0] == '{':
		var cols columns
		if err := json.Unmarshal(raw, &cols); err != nil {
			return nil, fmt.Errorf("decode column-oriented acoes: %w", err)
		}
		for i, t := range cols.Ticker {
			addRow(ds, t, at(cols.Preco, i), at(cols.Volume, i), at(cols.VarDiaPct, i))
		}
	default:
		return nil, fmt.Errorf("decode document: unexpected \"acoes\" shape %q", raw[:1])
	}

	ds.Total = len(ds.Rows)
	if doc.Total.set {
		ds.Total = int(doc.Total.v)
	}
	return ds, nil
}

func at(col []optNumber, i int) optNumber {
	if i < len(col) {
		return col[i]
	}
	return optNumber{}
}

// addRow stores one row. Later duplicates of a ticker replace earlier ones.
func addRow(ds *models.ReferenceDataset, t optString, price, volume, dayChange optNumber) {
	ticker, ok := models.NormalizeTicker(t.v)
	if !ok {
		return
	}
	var r models.ReferenceRow
	if price.set {
		r.Price = models.Float(price.v)
	}
	if volume.set {
		r.Volume = models.Int(int64(volume.v))
	}
	if dayChange.set {
		r.DayChangePct = models.Float(dayChange.v)
	}
	ds.Rows[ticker] = r
}

// optNumber accepts a JSON number, a numeric string, null, or R's "NA".
type optNumber struct {
	v   float64
	set bool
}

func (n *optNumber) UnmarshalJSON(b []byte) error {
	*n = optNumber{}
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		switch strings.ToUpper(s) {
		case "", "NA", "NAN", "NULL":
			return nil
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", b, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	n.v, n.set = v, true
	return nil
}

// optString accepts a JSON string, a number (tickers are never numeric but R
// may coerce), or null.
type optString struct {
	v string
}

func (o *optString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		o.v = ""
	case strings.HasPrefix(s, `"`):
		return json.Unmarshal(b, &o.v)
	default:
		o.v = s
	}
	return nil
}
