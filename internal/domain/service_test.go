package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/store/memory"
)

func intPtr(v int) *int { return &v }

func TestCreateUserNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := domain.NewService(memory.New())

	u, err := svc.CreateUser(ctx, domain.CreateUserInput{Name: " Thor ", Email: "Thor@Asgard.Marvel.com", Password: "mjolnir"})
	require.NoError(t, err)
	require.Equal(t, "Thor", u.Name)
	require.Equal(t, "thor@asgard.marvel.com", u.Email)
	require.Nil(t, u.Team)

	_, err = svc.CreateUser(ctx, domain.CreateUserInput{Name: "Loki", Email: "thor@asgard.marvel.com", Password: "x"})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateActivityValidation(t *testing.T) {
	svc := domain.NewService(memory.New())

	_, err := svc.CreateActivity(context.Background(), domain.CreateActivityInput{
		UserID:         "u-1",
		UserName:       "Hulk",
		ActivityType:   "HIIT",
		DurationMin:    intPtr(30),
		CaloriesBurned: intPtr(-1),
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	require.Equal(t, "calories_burned", verr.Fields[0].Field)
}

func TestCreateActivityKeepsUnknownTypeAsOther(t *testing.T) {
	svc := domain.NewService(memory.New())

	a, err := svc.CreateActivity(context.Background(), domain.CreateActivityInput{
		UserID:         "u-1",
		UserName:       "Aquaman",
		ActivityType:   "Surfing",
		DurationMin:    intPtr(40),
		CaloriesBurned: intPtr(300),
	})
	require.NoError(t, err)
	require.Equal(t, domain.ActivityOther, a.ActivityType.Kind)
	require.Equal(t, "Surfing", a.ActivityType.String())
	require.False(t, a.Date.IsZero())
}

func TestListRejectsUnknownFilterField(t *testing.T) {
	svc := domain.NewService(memory.New())

	_, err := svc.ListUsers(context.Background(), domain.Where("password", "secret"))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestListNormalizesTaggedFilters(t *testing.T) {
	ctx := context.Background()
	svc := domain.NewService(memory.New())

	_, err := svc.CreateWorkout(ctx, domain.CreateWorkoutInput{
		Name: "Warrior Yoga Flow", Description: "Flexibility", Difficulty: "easy", DurationMin: intPtr(30), Category: "Flexibility",
	})
	require.NoError(t, err)

	page, err := svc.ListWorkouts(ctx, domain.Where("difficulty", "EASY"))
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, domain.DifficultyEasy, page.Items[0].Difficulty.Level)
}

func TestClearAllAndCountAll(t *testing.T) {
	ctx := context.Background()
	svc := domain.NewService(memory.New())

	_, err := svc.CreateTeam(ctx, domain.CreateTeamInput{Name: "Team DC"})
	require.NoError(t, err)
	_, err = svc.CreateLeaderboardEntry(ctx, domain.CreateLeaderboardEntryInput{
		UserID: "u-1", UserName: "Batman", TotalCalories: intPtr(1600), TotalActivities: intPtr(2), Rank: intPtr(1),
	})
	require.NoError(t, err)

	counts, err := svc.CountAll(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Counts{Teams: 1, Leaderboard: 1}, counts)

	require.NoError(t, svc.ClearAll(ctx))
	counts, err = svc.CountAll(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Counts{}, counts)
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	svc := domain.NewService(memory.New())

	_, err := svc.GetTeam(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, svc.DeleteTeam(context.Background(), "nope"), domain.ErrNotFound)
}
