package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/logging"
	"example.com/octofit/internal/observability"
)

var (
	// ErrSourceRead wraps a failure to read users or activities. The leaderboard is left untouched.
	ErrSourceRead = errors.New("leaderboard: source read failed")
	// ErrStoreWrite wraps a failure to swap in the new snapshot.
	ErrStoreWrite = errors.New("leaderboard: store write failed")
	// ErrRunInProgress is returned by TryRebuild while another run holds the lock.
	ErrRunInProgress = errors.New("leaderboard: rebuild already in progress")
)

// Result describes a completed rebuild.
type Result struct {
	RunID          string
	EntriesWritten int
	IdleUsers      int
	Duration       time.Duration
}

// Rebuilder recomputes the leaderboard from the store. At most one run executes at a time.
type Rebuilder struct {
	store  domain.Store
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string

	mu sync.Mutex
}

// Option configures a Rebuilder.
type Option func(*Rebuilder)

// WithLogger overrides the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Rebuilder) { r.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Rebuilder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRebuilder constructs a Rebuilder over store.
func NewRebuilder(store domain.Store, opts ...Option) *Rebuilder {
	r := &Rebuilder{
		store:  store,
		logger: logging.WithComponent("leaderboard"),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rebuild waits for any active run to finish and then performs a full rebuild.
func (r *Rebuilder) Rebuild(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run(ctx)
}

// TryRebuild performs a rebuild unless one is already running.
func (r *Rebuilder) TryRebuild(ctx context.Context) (Result, error) {
	if !r.mu.TryLock() {
		observability.RecordLeaderboardRun(observability.OutcomeSkipped, 0, 0, r.now())
		return Result{}, ErrRunInProgress
	}
	defer r.mu.Unlock()
	return r.run(ctx)
}

func (r *Rebuilder) run(ctx context.Context) (Result, error) {
	start := r.now()
	runID := r.newID()
	logger := r.logger.With().Str("run_id", runID).Logger()

	users, activities, err := r.readSources(ctx)
	if err != nil {
		r.finish(observability.OutcomeReadError, 0, start)
		logger.Error().Err(err).Msg("leaderboard rebuild aborted before writing")
		return Result{}, err
	}

	entries := Aggregate(users, activities)
	idle := 0
	for _, e := range entries {
		if e.TotalActivities == 0 {
			idle++
		}
	}

	if err := r.store.Leaderboard().Replace(ctx, runID, entries); err != nil {
		r.finish(observability.OutcomeWriteError, 0, start)
		err = fmt.Errorf("%w: %w", ErrStoreWrite, err)
		logger.Error().Err(err).Int("entries", len(entries)).Msg("leaderboard swap failed")
		return Result{}, err
	}

	elapsed := r.finish(observability.OutcomeSuccess, len(entries), start)
	logger.Info().
		Int("entries_written", len(entries)).
		Int("users_without_activities", idle).
		Dur("duration", elapsed).
		Msg("leaderboard rebuilt")

	return Result{
		RunID:          runID,
		EntriesWritten: len(entries),
		IdleUsers:      idle,
		Duration:       elapsed,
	}, nil
}

// readSources loads every user and, per user, the activities filtered by user_id.
func (r *Rebuilder) readSources(ctx context.Context) ([]domain.User, []domain.Activity, error) {
	users, err := r.store.Users().Filter(ctx, domain.Query{})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list users: %w", ErrSourceRead, err)
	}
	var activities []domain.Activity
	for _, u := range users {
		own, err := r.store.Activities().Filter(ctx, domain.Where("user_id", u.ID))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: activities for user %s: %w", ErrSourceRead, u.ID, err)
		}
		activities = append(activities, own...)
	}
	return users, activities, nil
}

func (r *Rebuilder) finish(outcome string, entries int, start time.Time) time.Duration {
	end := r.now()
	elapsed := end.Sub(start)
	observability.RecordLeaderboardRun(outcome, entries, elapsed, end)
	return elapsed
}
