package fetcher

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/guttosm/b3penny/internal/domain/models"
)

type fakeProvider struct {
	quotes   map[models.Ticker]*models.Quote
	closes   map[models.HistoryPeriod][]float64
	failFor  map[models.Ticker]bool
	panicFor map[models.Ticker]bool

	inFlight atomic.Int32
	maxSeen  atomic.Int32
	mu       sync.Mutex
	calls    int
}

func (f *fakeProvider) Quote(_ context.Context, t models.Ticker) (*models.Quote, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.panicFor[t] {
		panic("boom")
	}
	if f.failFor[t] {
		return nil, errors.New("provider unavailable")
	}
	if q, ok := f.quotes[t]; ok {
		return q, nil
	}
	return &models.Quote{CurrentPrice: models.Float(5)}, nil
}

func (f *fakeProvider) Closes(_ context.Context, _ models.Ticker, p models.HistoryPeriod) ([]float64, error) {
	return f.closes[p], nil
}

func tickers(n int) []models.Ticker {
	out := make([]models.Ticker, n)
	for i := range out {
		out[i] = models.Ticker(fmt.Sprintf("TCK%03d", i))
	}
	return out
}

func TestFetchAll_PartialFailureIsolation(t *testing.T) {
	all := tickers(100)
	p := &fakeProvider{
		failFor:  map[models.Ticker]bool{all[3]: true, all[40]: true},
		panicFor: map[models.Ticker]bool{all[77]: true},
	}

	recs, stats := New(p).FetchAll(context.Background(), all, Params{MaxPrice: 10, Workers: 8})

	if len(recs) != 97 {
		t.Fatalf("expected 97 records, got %d", len(recs))
	}
	want := Stats{Total: 100, Accepted: 97, Filtered: 0, Failed: 3}
	if stats != want {
		t.Fatalf("stats=%+v want %+v", stats, want)
	}
	for _, r := range recs {
		if r.Ticker == all[3] || r.Ticker == all[40] || r.Ticker == all[77] {
			t.Fatalf("failed ticker %s leaked into records", r.Ticker)
		}
	}
}

func TestFetchAll_RespectsWorkerLimit(t *testing.T) {
	p := &fakeProvider{}
	New(p).FetchAll(context.Background(), tickers(50), Params{MaxPrice: 10, Workers: 3})
	if got := p.maxSeen.Load(); got > 3 {
		t.Fatalf("observed %d concurrent calls, limit 3", got)
	}
}

func TestFetchAll_KeepsInputOrder(t *testing.T) {
	all := tickers(30)
	recs, _ := New(&fakeProvider{}).FetchAll(context.Background(), all, Params{MaxPrice: 10, Workers: 6})
	for i, r := range recs {
		if r.Ticker != all[i] {
			t.Fatalf("record %d is %s, want %s", i, r.Ticker, all[i])
		}
	}
}

func TestFetchAll_PriceCeiling(t *testing.T) {
	p := &fakeProvider{quotes: map[models.Ticker]*models.Quote{
		"CHEAP3": {CurrentPrice: models.Float(9.99)},
		"EDGE3":  {CurrentPrice: models.Float(10)},
		"DEAR3":  {CurrentPrice: models.Float(10.01)},
		"ZERO3":  {CurrentPrice: models.Float(0), RegularMarketPrice: models.Float(0)},
		"NEG3":   {CurrentPrice: models.Float(-1)},
		"NONE3":  {},
	}}
	in := []models.Ticker{"CHEAP3", "EDGE3", "DEAR3", "ZERO3", "NEG3", "NONE3"}

	recs, stats := New(p).FetchAll(context.Background(), in, Params{MaxPrice: 10, Workers: 2})

	var got []models.Ticker
	for _, r := range recs {
		got = append(got, r.Ticker)
	}
	if !reflect.DeepEqual(got, []models.Ticker{"CHEAP3", "EDGE3"}) {
		t.Fatalf("accepted=%v", got)
	}
	if stats.Filtered != 4 || stats.Failed != 0 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestFetchAll_EmptyUniverse(t *testing.T) {
	recs, stats := New(&fakeProvider{}).FetchAll(context.Background(), nil, Params{MaxPrice: 10, Workers: 4})
	if len(recs) != 0 || stats.Total != 0 {
		t.Fatalf("expected empty result, got %d records %+v", len(recs), stats)
	}
}

func TestBuildRecord_Derivations(t *testing.T) {
	q := &models.Quote{
		RegularMarketPrice:         models.Float(8),
		RegularMarketPreviousClose: models.Float(10),
		ForwardEPS:                 models.Float(2),
		BookValue:                  models.Float(10),
		TrailingPE:                 models.Float(12.345),
		DividendYield:              models.Float(0.0456),
		LongName:                   "Empresa Exemplo S.A.",
		Sector:                     "Energy",
		Volume:                     models.Int(0),
		RegularMarketVolume:        models.Int(1500),
	}
	p := &fakeProvider{
		quotes: map[models.Ticker]*models.Quote{"EXMP3": q},
		closes: map[models.HistoryPeriod][]float64{
			models.Period5Days:  {8, 8.4},
			models.Period5Years: {16},
		},
	}
	f := New(p)

	rec, ok, err := f.buildRecord(context.Background(), "EXMP3", Params{MaxPrice: 10, LastUpdated: "18/10/2026 10:30"})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	check := func(name string, got *float64, want float64) {
		t.Helper()
		if got == nil || *got != want {
			t.Fatalf("%s=%v want %v", name, got, want)
		}
	}
	if rec.Price != 8 {
		t.Fatalf("price=%v", rec.Price)
	}
	check("dayChangePct", rec.DayChangePct, -20)
	check("weekChangePct", rec.WeekChangePct, 5)
	if rec.FiveYearChangePct != nil {
		t.Fatalf("single-point series must be absent, got %v", *rec.FiveYearChangePct)
	}
	check("priceToEarnings", rec.PriceToEarnings, 12.35)
	check("priceToBook", rec.PriceToBook, 0.8)
	check("dividendYield", rec.DividendYield, 4.56)
	check("valuationUpsidePct", rec.ValuationUpsidePct, 165.17)
	if rec.Volume == nil || *rec.Volume != 1500 {
		t.Fatalf("volume=%v", rec.Volume)
	}
	if rec.Name != "Empresa Exemplo S.A." || rec.Sector != "Energia" {
		t.Fatalf("name=%q sector=%q", rec.Name, rec.Sector)
	}
	if rec.LastUpdated != "18/10/2026 10:30" {
		t.Fatalf("lastUpdated=%q", rec.LastUpdated)
	}
}

func TestBuildRecord_AbsentFieldsStayAbsent(t *testing.T) {
	p := &fakeProvider{quotes: map[models.Ticker]*models.Quote{
		"BARE3": {PreviousClose: models.Float(2.5), BookValue: models.Float(0)},
	}}
	rec, ok, err := New(p).buildRecord(context.Background(), "BARE3", Params{MaxPrice: 10})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	// price falls back to previousClose, so the day change is exactly zero
	if rec.DayChangePct == nil || *rec.DayChangePct != 0 {
		t.Fatalf("dayChangePct=%v", rec.DayChangePct)
	}
	if rec.PriceToBook != nil || rec.ValuationUpsidePct != nil || rec.DividendYield != nil ||
		rec.PriceToEarnings != nil || rec.Volume != nil || rec.WeekChangePct != nil {
		t.Fatalf("expected absent optional fields, got %+v", rec)
	}
	if rec.Name != "BARE3" || rec.Sector != "N/A" {
		t.Fatalf("name=%q sector=%q", rec.Name, rec.Sector)
	}
}

func TestFetchAll_Idempotent(t *testing.T) {
	p := &fakeProvider{
		closes: map[models.HistoryPeriod][]float64{models.Period5Days: {4, 5}, models.Period5Years: {10, 5}},
	}
	params := Params{MaxPrice: 10, Workers: 4, LastUpdated: "x"}
	a, _ := New(p).FetchAll(context.Background(), tickers(20), params)
	b, _ := New(p).FetchAll(context.Background(), tickers(20), params)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two runs over identical provider data differ")
	}
}
