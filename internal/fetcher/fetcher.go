package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/logger"
	"github.com/guttosm/b3penny/internal/valuation"
)

// progressEvery controls how often batch progress is logged.
const progressEvery = 10

// Provider is the best-effort per-ticker market data source.
type Provider interface {
	Quote(ctx context.Context, t models.Ticker) (*models.Quote, error)
	Closes(ctx context.Context, t models.Ticker, period models.HistoryPeriod) ([]float64, error)
}

// Params are the per-run knobs of a batch.
//
// Fields:
//   - MaxPrice: price ceiling; records above it are filtered out.
//   - Workers: maximum in-flight tickers.
//   - LastUpdated: run clock, copied verbatim into every record.
type Params struct {
	MaxPrice    float64
	Workers     int
	LastUpdated string
}

// Stats summarizes one batch.
type Stats struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Filtered int `json:"filtered"`
	Failed   int `json:"failed"`
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeFiltered
	outcomeAccepted
)

type slot struct {
	record  models.SecurityRecord
	outcome outcome
}

// Fetcher fans a universe out to the provider and builds one record per
// accepted ticker.
type Fetcher struct {
	provider Provider
	log      zerolog.Logger
}

// New creates a Fetcher backed by p.
func New(p Provider) *Fetcher {
	return &Fetcher{provider: p, log: logger.Component("fetcher")}
}

// FetchAll processes every ticker with at most p.Workers in flight.
//
// Behavior:
//   - A failing or panicking ticker is counted and logged at debug; it never
//     aborts the batch.
//   - Each worker writes only its own result slot; records are returned in
//     input order once all workers joined.
//   - Progress is logged every 10 completions and once at the end.
func (f *Fetcher) FetchAll(ctx context.Context, tickers []models.Ticker, p Params) ([]models.SecurityRecord, Stats) {
	total := len(tickers)
	stats := Stats{Total: total}
	if total == 0 {
		return nil, stats
	}
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	f.log.Info().Int("total", total).Int("workers", workers).Float64("max_price", p.MaxPrice).Msg("fetch start")

	slots := make([]slot, total)
	progress := make(chan outcome, total)
	reported := make(chan Stats, 1)
	go f.report(progress, total, reported)

	// Per-ticker errors are absorbed, so the group never cancels siblings.
	var g errgroup.Group
	g.SetLimit(workers)
	for i, t := range tickers {
		g.Go(func() error {
			slots[i] = f.fetchOne(ctx, t, p)
			progress <- slots[i].outcome
			return nil
		})
	}
	_ = g.Wait()
	close(progress)
	stats = <-reported
	stats.Total = total

	records := make([]models.SecurityRecord, 0, stats.Accepted)
	for _, s := range slots {
		if s.outcome == outcomeAccepted {
			records = append(records, s.record)
		}
	}

	f.log.Info().
		Int("total", total).
		Int("accepted", stats.Accepted).
		Int("filtered", stats.Filtered).
		Int("failed", stats.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("fetch done")
	return records, stats
}

// report is the single consumer of completion events; it owns the counters.
func (f *Fetcher) report(progress <-chan outcome, total int, out chan<- Stats) {
	var s Stats
	done := 0
	for o := range progress {
		done++
		switch o {
		case outcomeAccepted:
			s.Accepted++
		case outcomeFiltered:
			s.Filtered++
		default:
			s.Failed++
		}
		if done%progressEvery == 0 || done == total {
			f.log.Info().Int("done", done).Int("total", total).Int("accepted", s.Accepted).Msg("fetch progress")
		}
	}
	out <- s
}

func (f *Fetcher) fetchOne(ctx context.Context, t models.Ticker, p Params) (res slot) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Debug().Str("ticker", string(t)).Interface("panic", r).Msg("ticker fetch panicked")
			res = slot{outcome: outcomeFailed}
		}
	}()

	rec, ok, err := f.buildRecord(ctx, t, p)
	switch {
	case err != nil:
		f.log.Debug().Str("ticker", string(t)).Err(err).Msg("ticker fetch failed")
		return slot{outcome: outcomeFailed}
	case !ok:
		f.log.Debug().Str("ticker", string(t)).Msg("ticker filtered out")
		return slot{outcome: outcomeFiltered}
	}
	f.log.Debug().Str("ticker", string(t)).Float64("price", rec.Price).Msg("ticker accepted")
	return slot{record: rec, outcome: outcomeAccepted}
}

// buildRecord applies the per-ticker derivation. ok is false when the price
// is missing, non-positive, or above the ceiling.
func (f *Fetcher) buildRecord(ctx context.Context, t models.Ticker, p Params) (models.SecurityRecord, bool, error) {
	q, err := f.provider.Quote(ctx, t)
	if err != nil {
		return models.SecurityRecord{}, false, fmt.Errorf("quote: %w", err)
	}
	if q == nil {
		q = &models.Quote{}
	}

	price, ok := q.ResolvePrice()
	if !ok || price <= 0 || price > p.MaxPrice {
		return models.SecurityRecord{}, false, nil
	}

	rec := models.SecurityRecord{
		Ticker:      t,
		Name:        q.ResolveName(t),
		Sector:      valuation.MapSector(q.Sector),
		LastUpdated: p.LastUpdated,
	}
	if r := valuation.Round(price); r != nil {
		rec.Price = *r
	}

	if prev, ok := q.ResolvePreviousClose(); ok {
		rec.DayChangePct = valuation.ChangePct(prev, price)
	}

	week, err := f.provider.Closes(ctx, t, models.Period5Days)
	if err != nil {
		return models.SecurityRecord{}, false, fmt.Errorf("closes %s: %w", models.Period5Days, err)
	}
	rec.WeekChangePct = valuation.SeriesChangePct(week)

	years, err := f.provider.Closes(ctx, t, models.Period5Years)
	if err != nil {
		return models.SecurityRecord{}, false, fmt.Errorf("closes %s: %w", models.Period5Years, err)
	}
	rec.FiveYearChangePct = valuation.SeriesChangePct(years)

	if q.TrailingPE != nil {
		rec.PriceToEarnings = valuation.Round(*q.TrailingPE)
	}
	if q.BookValue != nil && *q.BookValue != 0 {
		rec.PriceToBook = valuation.Round(price / *q.BookValue)
	}
	if q.DividendYield != nil && *q.DividendYield != 0 {
		rec.DividendYield = valuation.Round(*q.DividendYield * 100)
	}

	var eps *float64
	if v, ok := q.ResolveEPS(); ok {
		eps = &v
	}
	rec.ValuationUpsidePct = valuation.GrahamUpside(eps, q.BookValue, &price)

	if v, ok := q.ResolveVolume(); ok {
		rec.Volume = models.Int(v)
	}
	return rec, true, nil
}
