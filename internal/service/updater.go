package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/b3penny/internal/logger"
	"github.com/guttosm/b3penny/internal/pipeline"
)

// ErrUpdateInProgress is returned when a run is requested while another one
// is still executing.
var ErrUpdateInProgress = errors.New("update already in progress")

// Runner executes one snapshot build.
type Runner interface {
	Run(ctx context.Context, params pipeline.Params) (*pipeline.Result, error)
}

// LastRun describes the most recent finished run.
type LastRun struct {
	FinishedAt time.Time
	Records    int
	Err        error
}

// Updater lets at most one pipeline run execute at a time. The HTTP API and
// the scheduler share a single Updater.
type Updater struct {
	runner   Runner
	defaults pipeline.Params
	base     context.Context
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
	last    *LastRun
	wg      sync.WaitGroup
}

// NewUpdater creates an Updater. Background runs started with Start inherit
// base, so cancelling it stops them at the next blocking call.
func NewUpdater(base context.Context, runner Runner, defaults pipeline.Params) *Updater {
	return &Updater{
		runner:   runner,
		defaults: defaults,
		base:     base,
		log:      logger.Component("updater"),
	}
}

// InProgress reports whether a run is executing.
func (u *Updater) InProgress() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.running
}

// LastRun returns the outcome of the latest finished run, if any.
func (u *Updater) LastRun() (LastRun, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.last == nil {
		return LastRun{}, false
	}
	return *u.last, true
}

// Params resolves the parameters for a run. A zero maxPrice keeps the
// configured ceiling; a negative one is rejected.
func (u *Updater) Params(maxPrice float64) (pipeline.Params, error) {
	p := u.defaults
	if maxPrice != 0 {
		p.MaxPrice = maxPrice
	}
	if err := p.Validate(); err != nil {
		return pipeline.Params{}, err
	}
	return p, nil
}

// Start launches a run in the background and returns immediately.
func (u *Updater) Start(maxPrice float64) error {
	params, err := u.Params(maxPrice)
	if err != nil {
		return err
	}
	if !u.acquire() {
		return ErrUpdateInProgress
	}
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		_, _ = u.run(u.base, params)
	}()
	return nil
}

// RunNow executes a run synchronously.
func (u *Updater) RunNow(ctx context.Context, maxPrice float64) (*pipeline.Result, error) {
	params, err := u.Params(maxPrice)
	if err != nil {
		return nil, err
	}
	if !u.acquire() {
		return nil, ErrUpdateInProgress
	}
	return u.run(ctx, params)
}

// Wait blocks until background runs started with Start have finished.
func (u *Updater) Wait() {
	u.wg.Wait()
}

func (u *Updater) acquire() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.running {
		return false
	}
	u.running = true
	return true
}

func (u *Updater) run(ctx context.Context, params pipeline.Params) (res *pipeline.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("update panicked: %v", r)
		}
		last := &LastRun{FinishedAt: time.Now(), Err: err}
		if res != nil {
			last.Records = res.Snapshot.TotalCount
		}
		u.mu.Lock()
		u.running = false
		u.last = last
		u.mu.Unlock()

		if err != nil {
			u.log.Error().Err(err).Msg("update failed")
		} else {
			u.log.Info().Int("records", last.Records).Msg("update finished")
		}
	}()

	u.log.Info().Float64("max_price", params.MaxPrice).Int("workers", params.Workers).Msg("update started")
	return u.runner.Run(ctx, params)
}
