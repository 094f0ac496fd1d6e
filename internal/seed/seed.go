// Package seed loads the superhero demo data set.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/leaderboard"
)

// Rebuilder recomputes the leaderboard once the demo activities exist.
type Rebuilder interface {
	Rebuild(ctx context.Context) (leaderboard.Result, error)
}

// Populate clears every collection, then loads teams, heroes, their activities,
// a fresh leaderboard and the workout catalogue. It returns the final counts.
func Populate(ctx context.Context, service *domain.Service, rebuilder Rebuilder, logger zerolog.Logger) (domain.Counts, error) {
	if err := service.ClearAll(ctx); err != nil {
		return domain.Counts{}, fmt.Errorf("clear collections: %w", err)
	}
	logger.Info().Msg("cleared existing data")

	for _, in := range teams {
		if _, err := service.CreateTeam(ctx, in); err != nil {
			return domain.Counts{}, fmt.Errorf("create team %q: %w", in.Name, err)
		}
	}
	logger.Info().Int("teams", len(teams)).Msg("created teams")

	users := make([]domain.User, 0, len(heroes))
	for _, in := range heroes {
		u, err := service.CreateUser(ctx, in)
		if err != nil {
			return domain.Counts{}, fmt.Errorf("create user %q: %w", in.Name, err)
		}
		users = append(users, u)
	}
	logger.Info().Int("users", len(users)).Msg("created superhero users")

	for _, s := range sessions {
		hero := users[s.hero]
		if _, err := service.CreateActivity(ctx, domain.CreateActivityInput{
			UserID:         hero.ID,
			UserName:       hero.Name,
			ActivityType:   s.kind,
			DurationMin:    ptr(s.duration),
			CaloriesBurned: ptr(s.calories),
			DistanceKM:     s.distance,
		}); err != nil {
			return domain.Counts{}, fmt.Errorf("create activity for %q: %w", hero.Name, err)
		}
	}
	logger.Info().Int("activities", len(sessions)).Msg("created activities")

	result, err := rebuilder.Rebuild(ctx)
	if err != nil {
		return domain.Counts{}, err
	}
	logger.Info().Int("entries", result.EntriesWritten).Msg("created leaderboard")

	for _, in := range workouts {
		if _, err := service.CreateWorkout(ctx, in); err != nil {
			return domain.Counts{}, fmt.Errorf("create workout %q: %w", in.Name, err)
		}
	}
	logger.Info().Int("workouts", len(workouts)).Msg("created workout plans")

	return service.CountAll(ctx)
}
