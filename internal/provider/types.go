package provider

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/guttosm/b3penny/internal/domain/models"
)

// APIError is returned when the provider answers with a non-200 status or an
// error envelope.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Endpoint, e.Message)
}

// rawValue decodes Yahoo's {"raw": 1.23, "fmt": "1.23"} wrappers as well as
// bare numbers. Empty objects and null leave it unset.
type rawValue struct {
	v   float64
	set bool
}

func (r *rawValue) UnmarshalJSON(b []byte) error {
	*r = rawValue{}
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		return nil
	}
	if s[0] == '{' {
		var obj struct {
			Raw *float64 `json:"raw"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		if obj.Raw != nil {
			r.v, r.set = *obj.Raw, true
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	r.v, r.set = f, true
	return nil
}

func (r rawValue) asFloat() *float64 {
	if !r.set || math.IsNaN(r.v) || math.IsInf(r.v, 0) {
		return nil
	}
	v := r.v
	return &v
}

func (r rawValue) asInt() *int64 {
	if !r.set || math.IsNaN(r.v) || math.IsInf(r.v, 0) {
		return nil
	}
	v := int64(r.v)
	return &v
}

type errorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *errorBody           `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price *struct {
		RegularMarketPrice         rawValue `json:"regularMarketPrice"`
		RegularMarketPreviousClose rawValue `json:"regularMarketPreviousClose"`
		RegularMarketVolume        rawValue `json:"regularMarketVolume"`
		ShortName                  *string  `json:"shortName"`
		LongName                   *string  `json:"longName"`
	} `json:"price"`
	SummaryDetail *struct {
		PreviousClose rawValue `json:"previousClose"`
		TrailingPE    rawValue `json:"trailingPE"`
		DividendYield rawValue `json:"dividendYield"`
		Volume        rawValue `json:"volume"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics *struct {
		TrailingEps rawValue `json:"trailingEps"`
		ForwardEps  rawValue `json:"forwardEps"`
		BookValue   rawValue `json:"bookValue"`
	} `json:"defaultKeyStatistics"`
	FinancialData *struct {
		CurrentPrice rawValue `json:"currentPrice"`
	} `json:"financialData"`
	AssetProfile *struct {
		Sector string `json:"sector"`
	} `json:"assetProfile"`
}

// toQuote flattens the module-based payload into the typed Quote.
func (r quoteSummaryResult) toQuote() *models.Quote {
	q := &models.Quote{}
	if p := r.Price; p != nil {
		q.RegularMarketPrice = p.RegularMarketPrice.asFloat()
		q.RegularMarketPreviousClose = p.RegularMarketPreviousClose.asFloat()
		q.RegularMarketVolume = p.RegularMarketVolume.asInt()
		q.ShortName = strings.TrimSpace(deref(p.ShortName))
		q.LongName = strings.TrimSpace(deref(p.LongName))
	}
	if s := r.SummaryDetail; s != nil {
		q.PreviousClose = s.PreviousClose.asFloat()
		q.TrailingPE = s.TrailingPE.asFloat()
		q.DividendYield = s.DividendYield.asFloat()
		q.Volume = s.Volume.asInt()
	}
	if k := r.DefaultKeyStatistics; k != nil {
		q.TrailingEPS = k.TrailingEps.asFloat()
		q.ForwardEPS = k.ForwardEps.asFloat()
		q.BookValue = k.BookValue.asFloat()
	}
	if f := r.FinancialData; f != nil {
		q.CurrentPrice = f.CurrentPrice.asFloat()
	}
	if a := r.AssetProfile; a != nil {
		q.Sector = strings.TrimSpace(a.Sector)
	}
	return q
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *errorBody `json:"error"`
	} `json:"chart"`
}

// closes returns the observed closing prices in chronological order,
// preferring split/dividend adjusted closes. Gaps (null) are skipped.
func (c chartResponse) closes() []float64 {
	if len(c.Chart.Result) == 0 {
		return nil
	}
	ind := c.Chart.Result[0].Indicators
	var series []*float64
	if len(ind.AdjClose) > 0 && len(ind.AdjClose[0].AdjClose) > 0 {
		series = ind.AdjClose[0].AdjClose
	} else if len(ind.Quote) > 0 {
		series = ind.Quote[0].Close
	}
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		out = append(out, *v)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
