package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/octofit/internal/domain"
)

const leaderboardCollection = "leaderboard"

func leaderboardIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys: bson.D{{Key: "rank", Value: 1}},
	}}
}

type rankedCollection struct {
	collection[domain.LeaderboardEntry, leaderboardDoc]
	db *mongo.Database
}

// Replace writes entries to a staging collection and renames it over the live
// one with dropTarget, which readers observe as a single switch.
func (l *rankedCollection) Replace(ctx context.Context, runID string, entries []domain.LeaderboardEntry) error {
	if runID == "" {
		runID = uuid.NewString()
	}
	stagingName := fmt.Sprintf("%s_staging_%s", leaderboardCollection, runID)
	staging := l.db.Collection(stagingName)

	if err := l.db.CreateCollection(ctx, stagingName); err != nil {
		return fmt.Errorf("create staging collection: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = staging.Drop(context.WithoutCancel(ctx))
		}
	}()

	if len(entries) > 0 {
		docs := make([]any, 0, len(entries))
		for _, e := range entries {
			docs = append(docs, newLeaderboardDoc(e))
		}
		if _, err := staging.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
			return fmt.Errorf("stage entries: %w", err)
		}
	}
	if _, err := staging.Indexes().CreateMany(ctx, leaderboardIndexes()); err != nil {
		return fmt.Errorf("index staging collection: %w", err)
	}

	rename := bson.D{
		{Key: "renameCollection", Value: l.db.Name() + "." + stagingName},
		{Key: "to", Value: l.db.Name() + "." + leaderboardCollection},
		{Key: "dropTarget", Value: true},
	}
	if err := l.db.Client().Database("admin").RunCommand(ctx, rename).Err(); err != nil {
		return fmt.Errorf("swap leaderboard: %w", err)
	}
	committed = true
	return nil
}
