// Package leaderboard derives the ranked calorie leaderboard from users and activities.
package leaderboard

import (
	"cmp"
	"slices"

	"example.com/octofit/internal/domain"
)

// Aggregate computes one ranked entry per user.
//
// Totals are summed over activities whose UserID equals the user's ID exactly;
// users without activities get zero totals. Entries are ordered by total
// calories descending and ties keep the order of users, so ranks are 1..N with
// no gaps or shared positions. Activities pointing at unknown users are ignored.
func Aggregate(users []domain.User, activities []domain.Activity) []domain.LeaderboardEntry {
	type totals struct {
		calories int
		count    int
	}
	byUser := make(map[string]*totals, len(users))
	for _, u := range users {
		byUser[u.ID] = &totals{}
	}
	for _, a := range activities {
		if t, ok := byUser[a.UserID]; ok {
			t.calories += a.CaloriesBurned
			t.count++
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		t := byUser[u.ID]
		entries = append(entries, domain.LeaderboardEntry{
			UserID:          u.ID,
			UserName:        u.Name,
			Team:            u.Team,
			TotalCalories:   t.calories,
			TotalActivities: t.count,
		})
	}

	slices.SortStableFunc(entries, func(a, b domain.LeaderboardEntry) int {
		return cmp.Compare(b.TotalCalories, a.TotalCalories)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
