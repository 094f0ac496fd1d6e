//go:build integration

package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	mongocontainer "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/leaderboard"
)

func setupStore(t *testing.T, ctx context.Context) *Store {
	t.Helper()

	container, err := mongocontainer.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := Connect(ctx, uri, "octofit_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })
	return store
}

func TestStoreUniqueIndexesAndLookups(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t, ctx)

	user, err := store.Users().Insert(ctx, domain.User{Name: "Clark", Email: "clark@dc.com", Password: "kal-el"})
	require.NoError(t, err)
	require.Len(t, user.ID, 24)

	_, err = store.Users().Insert(ctx, domain.User{Name: "Other", Email: "clark@dc.com", Password: "x"})
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := store.Users().Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)
	require.True(t, user.CreatedAt.Equal(got.CreatedAt))

	_, err = store.Users().Get(ctx, "not-an-object-id")
	require.ErrorIs(t, err, domain.ErrNotFound)

	noTeam, err := store.Users().Count(ctx, domain.Where("team", ""))
	require.NoError(t, err)
	require.Equal(t, 1, noTeam)

	require.NoError(t, store.Users().DeleteAll(ctx))
	count, err := store.Users().Count(ctx, domain.Query{})
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestActivityDistanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t, ctx)

	zero := 0.0
	without, err := store.Activities().Insert(ctx, domain.Activity{UserID: "u1", UserName: "A", ActivityType: domain.ParseActivityType("yoga"), DurationMin: 20})
	require.NoError(t, err)
	withZero, err := store.Activities().Insert(ctx, domain.Activity{UserID: "u1", UserName: "A", ActivityType: domain.ParseActivityType("running"), DistanceKM: &zero})
	require.NoError(t, err)

	fetched, err := store.Activities().Get(ctx, without.ID)
	require.NoError(t, err)
	require.Nil(t, fetched.DistanceKM)

	fetched, err = store.Activities().Get(ctx, withZero.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.DistanceKM)
	require.Zero(t, *fetched.DistanceKM)
}

func TestRebuildRenamesStagingCollection(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t, ctx)

	ids := map[string]string{}
	for _, name := range []string{"A", "B", "C"} {
		u, err := store.Users().Insert(ctx, domain.User{Name: name, Email: name + "@example.com", Password: "pw"})
		require.NoError(t, err)
		ids[name] = u.ID
	}
	for _, a := range []struct {
		user     string
		calories int
	}{{"A", 300}, {"A", 150}, {"B", 1000}, {"B", 200}, {"B", 150}} {
		_, err := store.Activities().Insert(ctx, domain.Activity{UserID: ids[a.user], UserName: a.user, ActivityType: domain.ParseActivityType("Swimming"), CaloriesBurned: a.calories})
		require.NoError(t, err)
	}

	rebuilder := leaderboard.NewRebuilder(store)
	for i := 0; i < 2; i++ {
		result, err := rebuilder.Rebuild(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, result.EntriesWritten)
	}

	entries, err := store.Leaderboard().Filter(ctx, domain.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, ids["B"], entries[0].UserID)
	require.Equal(t, 1350, entries[0].TotalCalories)
	require.Equal(t, ids["A"], entries[1].UserID)
	require.Equal(t, 450, entries[1].TotalCalories)
	require.Equal(t, ids["C"], entries[2].UserID)
	require.Equal(t, 3, entries[2].Rank)

	names, err := store.db.ListCollectionNames(ctx, map[string]any{})
	require.NoError(t, err)
	for _, name := range names {
		require.NotContains(t, name, "staging")
	}
}
