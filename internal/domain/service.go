// Package domain defines the records tracked by octofit and the CRUD workflows over them.
package domain

import (
	"context"
	"strings"
)

// Service orchestrates record workflows on top of a Store.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store returns the backing store.
func (s *Service) Store() Store {
	return s.store
}

// Page is one window of a filtered list plus the size of the whole match.
type Page[T any] struct {
	Items []T
	Total int
}

// CreateUserInput captures the payload for a new user.
type CreateUserInput struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,max=255"`
	Team     *string `json:"team" validate:"omitempty,max=100"`
}

// CreateTeamInput captures the payload for a new team.
type CreateTeamInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

// CreateActivityInput captures the payload for a new activity.
type CreateActivityInput struct {
	UserID         string   `json:"user_id" validate:"required,max=100"`
	UserName       string   `json:"user_name" validate:"required,max=100"`
	ActivityType   string   `json:"activity_type" validate:"required,max=50"`
	DurationMin    *int     `json:"duration" validate:"required,gte=0"`
	CaloriesBurned *int     `json:"calories_burned" validate:"required,gte=0"`
	DistanceKM     *float64 `json:"distance" validate:"omitempty,gte=0"`
}

// CreateLeaderboardEntryInput captures a manually inserted leaderboard row.
type CreateLeaderboardEntryInput struct {
	UserID          string  `json:"user_id" validate:"required,max=100"`
	UserName        string  `json:"user_name" validate:"required,max=100"`
	Team            *string `json:"team" validate:"omitempty,max=100"`
	TotalCalories   *int    `json:"total_calories" validate:"required,gte=0"`
	TotalActivities *int    `json:"total_activities" validate:"required,gte=0"`
	Rank            *int    `json:"rank" validate:"required,gte=1"`
}

// CreateWorkoutInput captures the payload for a new workout.
type CreateWorkoutInput struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Description    string  `json:"description" validate:"required"`
	Difficulty     string  `json:"difficulty" validate:"required,max=20"`
	DurationMin    *int    `json:"duration" validate:"required,gte=0"`
	Category       string  `json:"category" validate:"required,max=50"`
	RecommendedFor *string `json:"recommended_for" validate:"omitempty,max=100"`
}

// CreateUser validates and stores a user. Duplicate emails yield ErrConflict.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	if err := Validate(in); err != nil {
		return User{}, err
	}
	return s.store.Users().Insert(ctx, User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: in.Password,
		Team:     trimOptional(in.Team),
	})
}

// CreateTeam validates and stores a team. Duplicate names yield ErrConflict.
func (s *Service) CreateTeam(ctx context.Context, in CreateTeamInput) (Team, error) {
	if err := Validate(in); err != nil {
		return Team{}, err
	}
	return s.store.Teams().Insert(ctx, Team{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	})
}

// CreateActivity stores an activity. The referenced user is not looked up.
func (s *Service) CreateActivity(ctx context.Context, in CreateActivityInput) (Activity, error) {
	if err := Validate(in); err != nil {
		return Activity{}, err
	}
	return s.store.Activities().Insert(ctx, Activity{
		UserID:         strings.TrimSpace(in.UserID),
		UserName:       strings.TrimSpace(in.UserName),
		ActivityType:   ParseActivityType(in.ActivityType),
		DurationMin:    *in.DurationMin,
		CaloriesBurned: *in.CaloriesBurned,
		DistanceKM:     in.DistanceKM,
	})
}

// CreateLeaderboardEntry stores a single row. The next rebuild replaces it.
func (s *Service) CreateLeaderboardEntry(ctx context.Context, in CreateLeaderboardEntryInput) (LeaderboardEntry, error) {
	if err := Validate(in); err != nil {
		return LeaderboardEntry{}, err
	}
	return s.store.Leaderboard().Insert(ctx, LeaderboardEntry{
		UserID:          strings.TrimSpace(in.UserID),
		UserName:        strings.TrimSpace(in.UserName),
		Team:            trimOptional(in.Team),
		TotalCalories:   *in.TotalCalories,
		TotalActivities: *in.TotalActivities,
		Rank:            *in.Rank,
	})
}

// CreateWorkout validates and stores a workout.
func (s *Service) CreateWorkout(ctx context.Context, in CreateWorkoutInput) (Workout, error) {
	if err := Validate(in); err != nil {
		return Workout{}, err
	}
	return s.store.Workouts().Insert(ctx, Workout{
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Difficulty:     ParseDifficulty(in.Difficulty),
		DurationMin:    *in.DurationMin,
		Category:       strings.TrimSpace(in.Category),
		RecommendedFor: trimOptional(in.RecommendedFor),
	})
}

// ListUsers returns a page of users.
func (s *Service) ListUsers(ctx context.Context, q Query) (Page[User], error) {
	return list(ctx, s.store.Users(), q, UserFields)
}

// ListTeams returns a page of teams.
func (s *Service) ListTeams(ctx context.Context, q Query) (Page[Team], error) {
	return list(ctx, s.store.Teams(), q, TeamFields)
}

// ListActivities returns a page of activities.
func (s *Service) ListActivities(ctx context.Context, q Query) (Page[Activity], error) {
	return list(ctx, s.store.Activities(), q, ActivityFields)
}

// ListLeaderboard returns a page of leaderboard entries ordered by rank.
func (s *Service) ListLeaderboard(ctx context.Context, q Query) (Page[LeaderboardEntry], error) {
	return list(ctx, Collection[LeaderboardEntry](s.store.Leaderboard()), q, LeaderboardFields)
}

// ListWorkouts returns a page of workouts ordered by name.
func (s *Service) ListWorkouts(ctx context.Context, q Query) (Page[Workout], error) {
	return list(ctx, s.store.Workouts(), q, WorkoutFields)
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.store.Users().Get(ctx, id)
}

// GetTeam fetches a team by id.
func (s *Service) GetTeam(ctx context.Context, id string) (Team, error) {
	return s.store.Teams().Get(ctx, id)
}

// GetActivity fetches an activity by id.
func (s *Service) GetActivity(ctx context.Context, id string) (Activity, error) {
	return s.store.Activities().Get(ctx, id)
}

// GetLeaderboardEntry fetches a leaderboard entry by id.
func (s *Service) GetLeaderboardEntry(ctx context.Context, id string) (LeaderboardEntry, error) {
	return s.store.Leaderboard().Get(ctx, id)
}

// GetWorkout fetches a workout by id.
func (s *Service) GetWorkout(ctx context.Context, id string) (Workout, error) {
	return s.store.Workouts().Get(ctx, id)
}

// DeleteUser removes a user. Activities and leaderboard rows that reference it are left as they are.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.store.Users().Delete(ctx, id)
}

// DeleteTeam removes a team.
func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	return s.store.Teams().Delete(ctx, id)
}

// DeleteActivity removes an activity.
func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	return s.store.Activities().Delete(ctx, id)
}

// DeleteLeaderboardEntry removes a leaderboard entry.
func (s *Service) DeleteLeaderboardEntry(ctx context.Context, id string) error {
	return s.store.Leaderboard().Delete(ctx, id)
}

// DeleteWorkout removes a workout.
func (s *Service) DeleteWorkout(ctx context.Context, id string) error {
	return s.store.Workouts().Delete(ctx, id)
}

// Counts reports the size of every collection.
type Counts struct {
	Users       int
	Teams       int
	Activities  int
	Leaderboard int
	Workouts    int
}

// CountAll counts every collection.
func (s *Service) CountAll(ctx context.Context) (Counts, error) {
	var (
		c   Counts
		err error
	)
	if c.Users, err = s.store.Users().Count(ctx, Query{}); err != nil {
		return Counts{}, err
	}
	if c.Teams, err = s.store.Teams().Count(ctx, Query{}); err != nil {
		return Counts{}, err
	}
	if c.Activities, err = s.store.Activities().Count(ctx, Query{}); err != nil {
		return Counts{}, err
	}
	if c.Leaderboard, err = s.store.Leaderboard().Count(ctx, Query{}); err != nil {
		return Counts{}, err
	}
	if c.Workouts, err = s.store.Workouts().Count(ctx, Query{}); err != nil {
		return Counts{}, err
	}
	return c, nil
}

// ClearAll empties every collection.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.Users().DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.store.Teams().DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.store.Activities().DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.store.Leaderboard().DeleteAll(ctx); err != nil {
		return err
	}
	return s.store.Workouts().DeleteAll(ctx)
}

func list[T any](ctx context.Context, c Collection[T], q Query, allowed []string) (Page[T], error) {
	if err := q.CheckField(allowed); err != nil {
		return Page[T]{}, err
	}
	q = q.Normalize()
	items, err := c.Filter(ctx, q)
	if err != nil {
		return Page[T]{}, err
	}
	total, err := c.Count(ctx, q)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Total: total}, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
