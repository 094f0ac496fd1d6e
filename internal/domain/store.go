package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Query selects records from a collection. An empty Field matches every record.
// Limit <= 0 means no limit.
type Query struct {
	Field  string
	Value  string
	Limit  int
	Offset int
}

// Where builds an unpaginated equality query.
func Where(field, value string) Query {
	return Query{Field: field, Value: value}
}

// Filterable fields per collection, named by their public JSON field.
var (
	UserFields        = []string{"name", "email", "team"}
	TeamFields        = []string{"name"}
	ActivityFields    = []string{"user_id", "user_name", "activity_type"}
	LeaderboardFields = []string{"user_id", "user_name", "team"}
	WorkoutFields     = []string{"name", "difficulty", "category"}
)

// CheckField rejects a query on a field outside allowed.
func (q Query) CheckField(allowed []string) error {
	if q.Field == "" || slices.Contains(allowed, q.Field) {
		return nil
	}
	return invalidField(q.Field, fmt.Sprintf("cannot filter on %q", q.Field))
}

// Normalize canonicalizes the filter value for fields stored in canonical form:
// tagged-set labels and lowercased emails.
func (q Query) Normalize() Query {
	switch q.Field {
	case "activity_type":
		q.Value = ParseActivityType(q.Value).String()
	case "difficulty":
		q.Value = ParseDifficulty(q.Value).String()
	case "email":
		q.Value = strings.ToLower(strings.TrimSpace(q.Value))
	}
	return q
}

// Collection is the per-entity contract every store backend implements.
//
// Insert assigns the id (and creation timestamp where the entity has one) and
// returns the stored record. Get and Delete return ErrNotFound for unknown ids.
// Filter returns records in the collection's natural order: insertion order for
// users, teams and activities, rank for leaderboard entries, name for workouts.
type Collection[T any] interface {
	Insert(ctx context.Context, record T) (T, error)
	Get(ctx context.Context, id string) (T, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Filter(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, q Query) (int, error)
}

// LeaderboardCollection adds the atomic snapshot swap used by rebuilds.
type LeaderboardCollection interface {
	Collection[LeaderboardEntry]
	// Replace swaps the whole collection for entries. Readers observe either the
	// previous snapshot or the new one, never an empty or partial set. runID
	// identifies the rebuild for backends that emit a leaderboard.rebuilt event.
	Replace(ctx context.Context, runID string, entries []LeaderboardEntry) error
}

// Store exposes the five collections of a backend.
type Store interface {
	Users() Collection[User]
	Teams() Collection[Team]
	Activities() Collection[Activity]
	Leaderboard() LeaderboardCollection
	Workouts() Collection[Workout]
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
