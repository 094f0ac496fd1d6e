package domain

import "time"

// User is a tracked person. Password is an opaque secret stored as given and never rendered.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Team      *string
	CreatedAt time.Time
}

// Team groups users by name. Membership lives on User.Team as free text.
type Team struct {
	ID          string
	Name        string
	Description *string
	CreatedAt   time.Time
}

// Activity is a single recorded workout session.
//
// UserID is not checked against the user collection and UserName is a snapshot
// taken at write time; renaming the user later does not touch existing activities.
type Activity struct {
	ID             string
	UserID         string
	UserName       string
	ActivityType   ActivityType
	DurationMin    int
	CaloriesBurned int
	DistanceKM     *float64
	Date           time.Time
}

// LeaderboardEntry is one ranked row of the derived leaderboard snapshot.
// UserName and Team are copies of the user at rebuild time.
type LeaderboardEntry struct {
	ID              string
	UserID          string
	UserName        string
	Team            *string
	TotalCalories   int
	TotalActivities int
	Rank            int
}

// Workout is static reference data describing a suggested plan.
type Workout struct {
	ID             string
	Name           string
	Description    string
	Difficulty     Difficulty
	DurationMin    int
	Category       string
	RecommendedFor *string
}
