// Package events defines the payloads published through the outbox.
package events

import "time"

// Event types, also used as the Kafka event_type header.
const (
	TypeActivityRecorded   = "activity.recorded"
	TypeLeaderboardRebuilt = "leaderboard.rebuilt"
)

// Aggregate types stored alongside outbox rows.
const (
	AggregateActivity    = "activity"
	AggregateLeaderboard = "leaderboard"
)

// ActivityRecorded is emitted when a new activity is stored.
type ActivityRecorded struct {
	ActivityID     string    `json:"activity_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	ActivityType   string    `json:"activity_type"`
	DurationMin    int       `json:"duration_min"`
	CaloriesBurned int       `json:"calories_burned"`
	DistanceKM     *float64  `json:"distance_km,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// LeaderboardRebuilt is emitted when a rebuild swaps in a new snapshot.
type LeaderboardRebuilt struct {
	RunID          string    `json:"run_id"`
	EntriesWritten int       `json:"entries_written"`
	Top            *TopEntry `json:"top,omitempty"`
	RebuiltAt      time.Time `json:"rebuilt_at"`
}

// TopEntry summarizes the rank 1 row of a snapshot.
type TopEntry struct {
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	TotalCalories int    `json:"total_calories"`
}
