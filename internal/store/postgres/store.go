// Package postgres implements the Record Store on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/octofit/internal/domain"
)

const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for the five collections.
type Store struct {
	pool   *pgxpool.Pool
	outbox bool

	users       *users
	teams       *teams
	activities  *activities
	leaderboard *leaderboardTable
	workouts    *workouts
}

// Option configures a Store.
type Option func(*Store)

// WithOutbox makes activity inserts and leaderboard swaps enqueue events in
// the same transaction.
func WithOutbox(enabled bool) Option {
	return func(s *Store) { s.outbox = enabled }
}

// Connect opens a pool against url and wraps it in a Store.
func Connect(ctx context.Context, url string, maxConns int32, opts ...Option) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(pool, opts...), nil
}

// New constructs a Store over an existing pool.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool}
	for _, opt := range opts {
		opt(s)
	}
	s.users = &users{table: newTable(pool, "users", userColumns, "seq", scanUser, map[string]string{
		"name": "name", "email": "email", "team": "team",
	})}
	s.teams = &teams{table: newTable(pool, "teams", teamColumns, "seq", scanTeam, map[string]string{
		"name": "name",
	})}
	s.activities = &activities{table: newTable(pool, "activities", activityColumns, "seq", scanActivity, map[string]string{
		"user_id": "user_id", "user_name": "user_name", "activity_type": "activity_type",
	}), outbox: s.outbox}
	s.leaderboard = &leaderboardTable{table: newTable(pool, "leaderboard", leaderboardColumns, "rank, id", scanLeaderboardEntry, map[string]string{
		"user_id": "user_id", "user_name": "user_name", "team": "team",
	}), outbox: s.outbox}
	s.workouts = &workouts{table: newTable(pool, "workouts", workoutColumns, "name, id", scanWorkout, map[string]string{
		"name": "name", "difficulty": "difficulty", "category": "category",
	})}
	return s
}

// Pool exposes the underlying pool for the outbox dispatcher and consumer.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Users() domain.Collection[domain.User] { return s.users }

func (s *Store) Teams() domain.Collection[domain.Team] { return s.teams }

func (s *Store) Activities() domain.Collection[domain.Activity] { return s.activities }

func (s *Store) Leaderboard() domain.LeaderboardCollection { return s.leaderboard }

func (s *Store) Workouts() domain.Collection[domain.Workout] { return s.workouts }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// table implements the read and delete half of domain.Collection for one relation.
// Columns named in filterable are the only ones a Query may reference.
type table[T any] struct {
	pool       *pgxpool.Pool
	name       string
	columns    string
	orderBy    string
	scan       func(rowScanner) (T, error)
	filterable map[string]string
}

func newTable[T any](pool *pgxpool.Pool, name, columns, orderBy string, scan func(rowScanner) (T, error), filterable map[string]string) table[T] {
	return table[T]{pool: pool, name: name, columns: columns, orderBy: orderBy, scan: scan, filterable: filterable}
}

func (t table[T]) Get(ctx context.Context, id string) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, t.columns, t.name)
	record, err := t.scan(t.pool.QueryRow(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, domain.ErrNotFound
		}
		return zero, err
	}
	return record, nil
}

func (t table[T]) Delete(ctx context.Context, id string) error {
	tag, err := t.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.name), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t table[T]) DeleteAll(ctx context.Context) error {
	_, err := t.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, t.name))
	return err
}

func (t table[T]) Filter(ctx context.Context, q domain.Query) ([]T, error) {
	where, args, err := t.where(q)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT %s FROM %s%s ORDER BY %s`, t.columns, t.name, where, t.orderBy)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}

	rows, err := t.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		record, err := t.scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (t table[T]) Count(ctx context.Context, q domain.Query) (int, error) {
	where, args, err := t.where(q)
	if err != nil {
		return 0, err
	}
	var count int
	err = t.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, t.name, where), args...).Scan(&count)
	return count, err
}

func (t table[T]) where(q domain.Query) (string, []any, error) {
	if q.Field == "" {
		return "", nil, nil
	}
	column, ok := t.filterable[q.Field]
	if !ok {
		return "", nil, fmt.Errorf("%w: cannot filter %s on %q", domain.ErrValidation, t.name, q.Field)
	}
	return fmt.Sprintf(` WHERE COALESCE(%s, '') = $1`, column), []any{q.Value}, nil
}

// translate maps driver errors onto the domain sentinels.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func nullIfEmpty(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}
