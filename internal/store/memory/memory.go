// Package memory provides an in-process Record Store for local development and tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/observability"
)

// Store keeps every collection in memory. Data does not survive a restart.
type Store struct {
	users       *collection[domain.User]
	teams       *collection[domain.Team]
	activities  *collection[domain.Activity]
	leaderboard *snapshot
	workouts    *collection[domain.Workout]
}

// New constructs an empty Store.
func New() *Store {
	now := func() time.Time { return time.Now().UTC() }
	return &Store{
		users: &collection[domain.User]{
			name: "users",
			id:   func(u domain.User) string { return u.ID },
			prepare: func(u domain.User) domain.User {
				u.ID = uuid.NewString()
				u.CreatedAt = now()
				return u
			},
			field:  userField,
			unique: func(u domain.User) string { return u.Email },
		},
		teams: &collection[domain.Team]{
			name: "teams",
			id:   func(t domain.Team) string { return t.ID },
			prepare: func(t domain.Team) domain.Team {
				t.ID = uuid.NewString()
				t.CreatedAt = now()
				return t
			},
			field:  teamField,
			unique: func(t domain.Team) string { return t.Name },
		},
		activities: &collection[domain.Activity]{
			name: "activities",
			id:   func(a domain.Activity) string { return a.ID },
			prepare: func(a domain.Activity) domain.Activity {
				a.ID = uuid.NewString()
				a.Date = now()
				return a
			},
			field: activityField,
			inserted: func(a domain.Activity) {
				observability.RecordActivityPersisted(a.Date)
			},
		},
		leaderboard: &snapshot{collection: collection[domain.LeaderboardEntry]{
			name: "leaderboard",
			id:   func(e domain.LeaderboardEntry) string { return e.ID },
			prepare: func(e domain.LeaderboardEntry) domain.LeaderboardEntry {
				e.ID = uuid.NewString()
				return e
			},
			field: leaderboardField,
			order: func(a, b domain.LeaderboardEntry) int { return a.Rank - b.Rank },
		}},
		workouts: &collection[domain.Workout]{
			name: "workouts",
			id:   func(w domain.Workout) string { return w.ID },
			prepare: func(w domain.Workout) domain.Workout {
				w.ID = uuid.NewString()
				return w
			},
			field: workoutField,
			order: func(a, b domain.Workout) int { return strings.Compare(a.Name, b.Name) },
		},
	}
}

func (s *Store) Users() domain.Collection[domain.User] { return s.users }
func (s *Store) Teams() domain.Collection[domain.Team] { return s.teams }
func (s *Store) Activities() domain.Collection[domain.Activity] { return s.activities }
func (s *Store) Leaderboard() domain.LeaderboardCollection { return s.leaderboard }
func (s *Store) Workouts() domain.Collection[domain.Workout] { return s.workouts }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// collection is a slice kept in insertion order. Lookups are linear.
type collection[T any] struct {
	name    string
	id      func(T) string
	prepare func(T) T
	field   func(T, string) string
	// unique returns the value that must not repeat across records; nil when none.
	unique   func(T) string
	order    func(a, b T) int
	inserted func(T)

	mu    sync.RWMutex
	items []T
}

func (c *collection[T]) Insert(ctx context.Context, record T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unique != nil {
		key := c.unique(record)
		for _, existing := range c.items {
			if c.unique(existing) == key {
				var zero T
				return zero, domain.ErrConflict
			}
		}
	}
	record = c.prepare(record)
	c.items = append(c.items, record)
	observability.RecordInserted(c.name)
	if c.inserted != nil {
		c.inserted(record)
	}
	return record, nil
}

func (c *collection[T]) Get(ctx context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.id(item) == id {
			return item, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.items, func(item T) bool { return c.id(item) == id })
	if idx < 0 {
		return domain.ErrNotFound
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	return nil
}

func (c *collection[T]) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return nil
}

func (c *collection[T]) Filter(ctx context.Context, q domain.Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	matched := c.match(q)
	c.mu.RUnlock()

	if c.order != nil {
		slices.SortStableFunc(matched, c.order)
	}
	return paginate(matched, q.Limit, q.Offset), nil
}

func (c *collection[T]) Count(ctx context.Context, q domain.Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.match(q)), nil
}

// match copies the records selected by q. Callers hold the read lock.
func (c *collection[T]) match(q domain.Query) []T {
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if q.Field == "" || c.field(item, q.Field) == q.Value {
			out = append(out, item)
		}
	}
	return out
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type snapshot struct {
	collection[domain.LeaderboardEntry]
}

// Replace builds the new snapshot outside the lock and swaps it in one assignment.
func (l *snapshot) Replace(ctx context.Context, _ string, entries []domain.LeaderboardEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	staged := make([]domain.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		staged = append(staged, l.prepare(e))
	}

	l.mu.Lock()
	l.items = staged
	l.mu.Unlock()
	return nil
}

func userField(u domain.User, field string) string {
	switch field {
	case "name":
		return u.Name
	case "email":
		return u.Email
	case "team":
		return deref(u.Team)
	}
	return ""
}

func teamField(t domain.Team, field string) string {
	if field == "name" {
		return t.Name
	}
	return ""
}

func activityField(a domain.Activity, field string) string {
	switch field {
	case "user_id":
		return a.UserID
	case "user_name":
		return a.UserName
	case "activity_type":
		return a.ActivityType.String()
	}
	return ""
}

func leaderboardField(e domain.LeaderboardEntry, field string) string {
	switch field {
	case "user_id":
		return e.UserID
	case "user_name":
		return e.UserName
	case "team":
		return deref(e.Team)
	}
	return ""
}

func workoutField(w domain.Workout, field string) string {
	switch field {
	case "name":
		return w.Name
	case "difficulty":
		return w.Difficulty.String()
	case "category":
		return w.Category
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
