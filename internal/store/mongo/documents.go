package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"example.com/octofit/internal/domain"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Team      *string            `bson:"team,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

func newUserDoc(u domain.User) userDoc {
	return userDoc{ID: primitive.NewObjectID(), Name: u.Name, Email: u.Email, Password: u.Password, Team: u.Team, CreatedAt: now()}
}

func (d userDoc) toDomain() domain.User {
	return domain.User{ID: d.ID.Hex(), Name: d.Name, Email: d.Email, Password: d.Password, Team: d.Team, CreatedAt: d.CreatedAt.UTC()}
}

type teamDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description *string            `bson:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func newTeamDoc(t domain.Team) teamDoc {
	return teamDoc{ID: primitive.NewObjectID(), Name: t.Name, Description: t.Description, CreatedAt: now()}
}

func (d teamDoc) toDomain() domain.Team {
	return domain.Team{ID: d.ID.Hex(), Name: d.Name, Description: d.Description, CreatedAt: d.CreatedAt.UTC()}
}

type activityDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	UserID         string             `bson:"user_id"`
	UserName       string             `bson:"user_name"`
	ActivityType   string             `bson:"activity_type"`
	DurationMin    int                `bson:"duration"`
	CaloriesBurned int                `bson:"calories_burned"`
	DistanceKM     *float64           `bson:"distance,omitempty"`
	Date           time.Time          `bson:"date"`
}

func newActivityDoc(a domain.Activity) activityDoc {
	return activityDoc{
		ID:             primitive.NewObjectID(),
		UserID:         a.UserID,
		UserName:       a.UserName,
		ActivityType:   a.ActivityType.String(),
		DurationMin:    a.DurationMin,
		CaloriesBurned: a.CaloriesBurned,
		DistanceKM:     a.DistanceKM,
		Date:           now(),
	}
}

func (d activityDoc) toDomain() domain.Activity {
	return domain.Activity{
		ID:             d.ID.Hex(),
		UserID:         d.UserID,
		UserName:       d.UserName,
		ActivityType:   domain.ParseActivityType(d.ActivityType),
		DurationMin:    d.DurationMin,
		CaloriesBurned: d.CaloriesBurned,
		DistanceKM:     d.DistanceKM,
		Date:           d.Date.UTC(),
	}
}

type leaderboardDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	UserID          string             `bson:"user_id"`
	UserName        string             `bson:"user_name"`
	Team            *string            `bson:"team,omitempty"`
	TotalCalories   int                `bson:"total_calories"`
	TotalActivities int                `bson:"total_activities"`
	Rank            int                `bson:"rank"`
}

func newLeaderboardDoc(e domain.LeaderboardEntry) leaderboardDoc {
	return leaderboardDoc{
		ID:              primitive.NewObjectID(),
		UserID:          e.UserID,
		UserName:        e.UserName,
		Team:            e.Team,
		TotalCalories:   e.TotalCalories,
		TotalActivities: e.TotalActivities,
		Rank:            e.Rank,
	}
}

func (d leaderboardDoc) toDomain() domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		ID:              d.ID.Hex(),
		UserID:          d.UserID,
		UserName:        d.UserName,
		Team:            d.Team,
		TotalCalories:   d.TotalCalories,
		TotalActivities: d.TotalActivities,
		Rank:            d.Rank,
	}
}

type workoutDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	Description    string             `bson:"description"`
	Difficulty     string             `bson:"difficulty"`
	DurationMin    int                `bson:"duration"`
	Category       string             `bson:"category"`
	RecommendedFor *string            `bson:"recommended_for,omitempty"`
}

func newWorkoutDoc(w domain.Workout) workoutDoc {
	return workoutDoc{
		ID:             primitive.NewObjectID(),
		Name:           w.Name,
		Description:    w.Description,
		Difficulty:     w.Difficulty.String(),
		DurationMin:    w.DurationMin,
		Category:       w.Category,
		RecommendedFor: w.RecommendedFor,
	}
}

func (d workoutDoc) toDomain() domain.Workout {
	return domain.Workout{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Description:    d.Description,
		Difficulty:     domain.ParseDifficulty(d.Difficulty),
		DurationMin:    d.DurationMin,
		Category:       d.Category,
		RecommendedFor: d.RecommendedFor,
	}
}

// now is truncated to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
