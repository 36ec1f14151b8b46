package decay

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultSchedule runs the decay pass once an hour, on the hour.
const DefaultSchedule = "0 0 * * * *"

// Scheduler drives an Engine on a cron schedule. Grounded on
// original_source's tokio_cron_scheduler usage, generalized from a
// one-off async job to robfig/cron/v3 since no cron library appears in
// the teacher itself.
type Scheduler struct {
	engine   *Engine
	cron     *cron.Cron
	log      zerolog.Logger
	schedule string
}

// NewScheduler builds a scheduler that runs engine on the given 6-field
// (seconds-first) cron schedule.
func NewScheduler(engine *Engine, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{engine: engine, cron: c, log: log, schedule: schedule}
}

// RunOnce runs a single decay pass and returns.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.log.Info().Msg("running decay calculation once")
	updated, err := s.engine.CalculateAllDecay(ctx)
	if err != nil {
		return err
	}
	s.log.Info().Int("updated", updated).Msg("decay calculation complete")
	return nil
}

// Start registers the scheduled job and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.log.Info().Str("schedule", s.schedule).Msg("starting decay scheduler")

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.log.Info().Msg("running scheduled decay calculation")
		if _, err := s.engine.CalculateAllDecay(ctx); err != nil {
			s.log.Error().Err(err).Msg("decay calculation failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	defer s.cron.Stop()

	<-ctx.Done()
	s.log.Info().Msg("shutting down decay scheduler")
	return nil
}
