package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/events"
	"example.com/octofit/internal/observability"
	"example.com/octofit/internal/outbox"
)

const (
	userColumns        = `id, name, email, password, team, created_at`
	teamColumns        = `id, name, description, created_at`
	activityColumns    = `id, user_id, user_name, activity_type, duration_min, calories_burned, distance_km, date`
	leaderboardColumns = `id, user_id, user_name, team, total_calories, total_activities, rank`
	workoutColumns     = `id, name, description, difficulty, duration_min, category, recommended_for`
)

type users struct {
	table[domain.User]
}

func (u *users) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = uuid.NewString()
	const stmt = `INSERT INTO users (id, name, email, password, team) VALUES ($1,$2,$3,$4,$5) RETURNING created_at`
	if err := u.pool.QueryRow(ctx, stmt, user.ID, user.Name, user.Email, user.Password, nullIfEmpty(user.Team)).Scan(&user.CreatedAt); err != nil {
		return domain.User{}, translate(err)
	}
	observability.RecordInserted(u.name)
	return user, nil
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Team, &user.CreatedAt)
	return user, err
}

type teams struct {
	table[domain.Team]
}

func (t *teams) Insert(ctx context.Context, team domain.Team) (domain.Team, error) {
	team.ID = uuid.NewString()
	const stmt = `INSERT INTO teams (id, name, description) VALUES ($1,$2,$3) RETURNING created_at`
	if err := t.pool.QueryRow(ctx, stmt, team.ID, team.Name, team.Description).Scan(&team.CreatedAt); err != nil {
		return domain.Team{}, translate(err)
	}
	observability.RecordInserted(t.name)
	return team, nil
}

func scanTeam(row rowScanner) (domain.Team, error) {
	var team domain.Team
	err := row.Scan(&team.ID, &team.Name, &team.Description, &team.CreatedAt)
	return team, err
}

type activities struct {
	table[domain.Activity]
	outbox bool
}

// Insert persists the activity and, when the outbox is enabled, its
// activity.recorded event inside a single transaction.
func (a *activities) Insert(ctx context.Context, activity domain.Activity) (result domain.Activity, err error) {
	activity.ID = uuid.NewString()

	tx, err := a.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Activity{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO activities (id, user_id, user_name, activity_type, duration_min, calories_burned, distance_km)
        VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING date`

	err = tx.QueryRow(ctx, stmt,
		activity.ID,
		activity.UserID,
		activity.UserName,
		activity.ActivityType.String(),
		activity.DurationMin,
		activity.CaloriesBurned,
		activity.DistanceKM,
	).Scan(&activity.Date)
	if err != nil {
		return domain.Activity{}, translate(err)
	}

	if a.outbox {
		if err = outbox.Enqueue(ctx, tx, outbox.Event{
			AggregateType: events.AggregateActivity,
			AggregateID:   activity.ID,
			EventType:     events.TypeActivityRecorded,
			PartitionKey:  activity.UserID,
			Payload:       activityRecorded(activity),
		}); err != nil {
			return domain.Activity{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Activity{}, err
	}
	observability.RecordInserted(a.name)
	observability.RecordActivityPersisted(activity.Date)
	return activity, nil
}

func activityRecorded(a domain.Activity) events.ActivityRecorded {
	return events.ActivityRecorded{
		ActivityID:     a.ID,
		UserID:         a.UserID,
		UserName:       a.UserName,
		ActivityType:   a.ActivityType.String(),
		DurationMin:    a.DurationMin,
		CaloriesBurned: a.CaloriesBurned,
		DistanceKM:     a.DistanceKM,
		RecordedAt:     a.Date,
	}
}

func scanActivity(row rowScanner) (domain.Activity, error) {
	var (
		activity     domain.Activity
		activityType string
	)
	err := row.Scan(&activity.ID, &activity.UserID, &activity.UserName, &activityType, &activity.DurationMin, &activity.CaloriesBurned, &activity.DistanceKM, &activity.Date)
	activity.ActivityType = domain.ParseActivityType(activityType)
	return activity, err
}

type workouts struct {
	table[domain.Workout]
}

func (w *workouts) Insert(ctx context.Context, workout domain.Workout) (domain.Workout, error) {
	workout.ID = uuid.NewString()
	const stmt = `INSERT INTO workouts (id, name, description, difficulty, duration_min, category, recommended_for)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := w.pool.Exec(ctx, stmt,
		workout.ID,
		workout.Name,
		workout.Description,
		workout.Difficulty.String(),
		workout.DurationMin,
		workout.Category,
		nullIfEmpty(workout.RecommendedFor),
	)
	if err != nil {
		return domain.Workout{}, translate(err)
	}
	observability.RecordInserted(w.name)
	return workout, nil
}

func scanWorkout(row rowScanner) (domain.Workout, error) {
	var (
		workout    domain.Workout
		difficulty string
	)
	err := row.Scan(&workout.ID, &workout.Name, &workout.Description, &difficulty, &workout.DurationMin, &workout.Category, &workout.RecommendedFor)
	workout.Difficulty = domain.ParseDifficulty(difficulty)
	return workout, err
}

func scanLeaderboardEntry(row rowScanner) (domain.LeaderboardEntry, error) {
	var entry domain.LeaderboardEntry
	err := row.Scan(&entry.ID, &entry.UserID, &entry.UserName, &entry.Team, &entry.TotalCalories, &entry.TotalActivities, &entry.Rank)
	return entry, err
}

func utcNow() time.Time {
	return time.Now().UTC()
}
