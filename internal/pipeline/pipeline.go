// Package pipeline runs one snapshot build end to end: reference data,
// universe, provider fetch, reconciliation, and the snapshot write.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guttosm/b3penny/internal/domain/models"
	"github.com/guttosm/b3penny/internal/fetcher"
	"github.com/guttosm/b3penny/internal/logger"
	"github.com/guttosm/b3penny/internal/reconcile"
	"github.com/guttosm/b3penny/internal/snapshot"
	"github.com/guttosm/b3penny/internal/universe"
)

var (
	// ErrEmptyResult means a non-empty universe produced no records. No
	// snapshot is written in that case.
	ErrEmptyResult = errors.New("no security met the criteria")

	// ErrInvalidParams is returned for a non-positive price ceiling or
	// worker count.
	ErrInvalidParams = errors.New("invalid run parameters")
)

// ReferenceSource yields the authoritative dataset, or nil when unavailable.
type ReferenceSource interface {
	Load(ctx context.Context) *models.ReferenceDataset
}

// Recorder persists a written snapshot. Optional.
type Recorder interface {
	SaveRun(ctx context.Context, runID uuid.UUID, generatedAt time.Time, snap *models.Snapshot) error
}

// Params are the tunables of a single run.
type Params struct {
	MaxPrice float64
	Workers  int
}

// Validate reports ErrInvalidParams for non-positive values.
func (p Params) Validate() error {
	if p.MaxPrice <= 0 {
		return fmt.Errorf("%w: max price must be > 0, got %v", ErrInvalidParams, p.MaxPrice)
	}
	if p.Workers <= 0 {
		return fmt.Errorf("%w: workers must be > 0, got %d", ErrInvalidParams, p.Workers)
	}
	return nil
}

// Result describes a completed run.
type Result struct {
	RunID      uuid.UUID
	Snapshot   *models.Snapshot
	Stats      fetcher.Stats
	Reconciled int
	Elapsed    time.Duration
}

// Config wires the pipeline's file locations and clock zone.
type Config struct {
	OutputPath string
	SeedFile   string
	Location   *time.Location
}

// Pipeline is safe to reuse across runs but not to run concurrently against
// the same output path; callers serialize runs (see service.Updater).
type Pipeline struct {
	cfg       Config
	reference ReferenceSource
	fetcher   *fetcher.Fetcher
	recorder  Recorder
	now       func() time.Time
	log       zerolog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRecorder persists every written snapshot to r.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithClock overrides the run clock.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New builds a Pipeline.
func New(cfg Config, ref ReferenceSource, provider fetcher.Provider, opts ...Option) *Pipeline {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	p := &Pipeline{
		cfg:       cfg,
		reference: ref,
		fetcher:   fetcher.New(provider),
		now:       time.Now,
		log:       logger.Component("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one build.
//
// Behavior:
//   - Invalid params fail fast with ErrInvalidParams.
//   - An empty universe writes an empty snapshot and succeeds.
//   - A non-empty universe yielding zero records returns ErrEmptyResult and
//     leaves the previous snapshot in place.
//   - History persistence failures are logged, never returned.
func (p *Pipeline) Run(ctx context.Context, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	runID := uuid.New()
	log := p.log.With().Str("run_id", runID.String()).Logger()
	log.Info().Float64("max_price", params.MaxPrice).Int("workers", params.Workers).Msg("run start")

	var ds *models.ReferenceDataset
	if p.reference != nil {
		ds = p.reference.Load(ctx)
	}
	if ds == nil {
		log.Warn().Msg("reference dataset unavailable, using provider data only")
	} else {
		log.Info().Int("rows", len(ds.Rows)).Str("reference_date", ds.ReferenceDate).Msg("reference dataset loaded")
	}

	prior := snapshot.ReadPrior(p.cfg.OutputPath)
	seed := universe.LoadSeed(p.cfg.SeedFile)
	u := universe.Resolve(ds, prior, seed)

	clock := p.now()
	records, stats := p.fetcher.FetchAll(ctx, u.Tickers(), fetcher.Params{
		MaxPrice:    params.MaxPrice,
		Workers:     params.Workers,
		LastUpdated: snapshot.FormatTimestamp(clock, p.cfg.Location),
	})

	if len(records) == 0 && u.Len() > 0 {
		log.Error().Int("universe", u.Len()).Int("failed", stats.Failed).Msg("no security met the criteria")
		return nil, ErrEmptyResult
	}

	reconciled := reconcile.Apply(records, ds)

	snap := snapshot.Build(records, ds, clock, p.cfg.Location)
	if err := snapshot.Write(p.cfg.OutputPath, snap); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	if p.recorder != nil {
		if err := p.recorder.SaveRun(ctx, runID, clock, snap); err != nil {
			log.Error().Err(err).Msg("failed to record run history")
		}
	}

	res := &Result{
		RunID:      runID,
		Snapshot:   snap,
		Stats:      stats,
		Reconciled: reconciled,
		Elapsed:    time.Since(start),
	}
	log.Info().
		Int("records", snap.TotalCount).
		Int("reconciled", reconciled).
		Str("source", snap.Source).
		Dur("elapsed", res.Elapsed).
		Msg("run done")
	return res, nil
}
