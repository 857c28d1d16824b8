package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/guttosm/b3penny/internal/logger"
	"github.com/guttosm/b3penny/internal/service"
)

// Trigger starts a background snapshot run. A zero price keeps the
// configured default ceiling.
type Trigger interface {
	Start(maxPrice float64) error
}

// Scheduler refreshes the snapshot on a cron schedule, but only while the
// exchange is in session.
type Scheduler struct {
	cron    *cron.Cron
	trigger Trigger
	loc     *time.Location
	now     func() time.Time
	log     zerolog.Logger
}

// New registers the refresh job under schedule, a standard 5-field cron
// expression evaluated in loc.
func New(schedule string, loc *time.Location, trigger Trigger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		trigger: trigger,
		loc:     loc,
		now:     time.Now,
		log:     logger.Component("scheduler"),
	}
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info().Str("tz", s.loc.String()).Msg("scheduler started")
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once a tick in
// flight has returned; runs already handed to the trigger keep going.
func (s *Scheduler) Stop() context.Context {
	s.log.Info().Msg("scheduler stopping")
	return s.cron.Stop()
}

// tick fires a refresh when the market is open.
func (s *Scheduler) tick() {
	now := s.now().In(s.loc)
	if !IsTradingTime(now, s.loc) {
		s.log.Debug().Time("at", now).Msg("outside trading hours, skipping refresh")
		return
	}

	err := s.trigger.Start(0)
	switch {
	case err == nil:
		s.log.Info().Time("at", now).Msg("scheduled refresh started")
	case errors.Is(err, service.ErrUpdateInProgress):
		s.log.Info().Msg("update already in progress, skipping scheduled refresh")
	default:
		s.log.Error().Err(err).Msg("scheduled refresh failed to start")
	}
}
