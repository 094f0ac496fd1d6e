package api

import (
	"time"

	"example.com/octofit/internal/domain"
)

// ListResponse packages one page of results with the size of the whole match.
// Next and Previous are absolute links to the neighbouring pages, null at either end.
type ListResponse[V any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []V     `json:"results"`
}

// UserView is the public shape of a user. The password is never rendered.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Team      *string   `json:"team"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamView is the public shape of a team.
type TeamView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityView is the public shape of an activity.
type ActivityView struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	ActivityType   string    `json:"activity_type"`
	Duration       int       `json:"duration"`
	CaloriesBurned int       `json:"calories_burned"`
	Distance       *float64  `json:"distance"`
	Date           time.Time `json:"date"`
}

// LeaderboardEntryView is the public shape of a leaderboard row.
type LeaderboardEntryView struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	UserName        string  `json:"user_name"`
	Team            *string `json:"team"`
	TotalCalories   int     `json:"total_calories"`
	TotalActivities int     `json:"total_activities"`
	Rank            int     `json:"rank"`
}

// WorkoutView is the public shape of a workout.
type WorkoutView struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Difficulty     string  `json:"difficulty"`
	Duration       int     `json:"duration"`
	Category       string  `json:"category"`
	RecommendedFor *string `json:"recommended_for"`
}

// RebuildResponse reports a completed leaderboard rebuild.
type RebuildResponse struct {
	RunID          string `json:"run_id"`
	EntriesWritten int    `json:"entries_written"`
}

func toUserView(u domain.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Team: u.Team, CreatedAt: u.CreatedAt}
}

func toTeamView(t domain.Team) TeamView {
	return TeamView{ID: t.ID, Name: t.Name, Description: t.Description, CreatedAt: t.CreatedAt}
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:             a.ID,
		UserID:         a.UserID,
		UserName:       a.UserName,
		ActivityType:   a.ActivityType.String(),
		Duration:       a.DurationMin,
		CaloriesBurned: a.CaloriesBurned,
		Distance:       a.DistanceKM,
		Date:           a.Date,
	}
}

func toLeaderboardEntryView(e domain.LeaderboardEntry) LeaderboardEntryView {
	return LeaderboardEntryView{
		ID:              e.ID,
		UserID:          e.UserID,
		UserName:        e.UserName,
		Team:            e.Team,
		TotalCalories:   e.TotalCalories,
		TotalActivities: e.TotalActivities,
		Rank:            e.Rank,
	}
}

func toWorkoutView(w domain.Workout) WorkoutView {
	return WorkoutView{
		ID:             w.ID,
		Name:           w.Name,
		Description:    w.Description,
		Difficulty:     w.Difficulty.String(),
		Duration:       w.DurationMin,
		Category:       w.Category,
		RecommendedFor: w.RecommendedFor,
	}
}
