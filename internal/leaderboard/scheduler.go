package leaderboard

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"example.com/octofit/internal/logging"
)

// Scheduler runs periodic rebuilds under a supervisor. Ticks that find a run
// in progress are skipped.
type Scheduler struct {
	rebuilder *Rebuilder
	interval  time.Duration
	logger    zerolog.Logger
}

// NewScheduler constructs a Scheduler. interval must be positive.
func NewScheduler(rebuilder *Rebuilder, interval time.Duration) *Scheduler {
	return &Scheduler{
		rebuilder: rebuilder,
		interval:  interval,
		logger:    logging.WithComponent("leaderboard-scheduler"),
	}
}

// Serve implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("scheduled leaderboard rebuilds enabled")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.rebuilder.TryRebuild(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrRunInProgress):
		s.logger.Debug().Msg("skipping tick, rebuild already running")
	case ctx.Err() != nil:
	default:
		// The previous snapshot stays readable; retry on the next tick.
		s.logger.Warn().Err(err).Msg("scheduled rebuild failed")
	}
}

func (s *Scheduler) String() string {
	return "leaderboard-scheduler"
}
