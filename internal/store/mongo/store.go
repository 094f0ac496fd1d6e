// Package mongo implements the Record Store on MongoDB. Each collection maps to
// one Mongo collection and ids are ObjectID hex strings.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/observability"
)

// Store provides MongoDB-backed persistence.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	users       *collection[domain.User, userDoc]
	teams       *collection[domain.Team, teamDoc]
	activities  *collection[domain.Activity, activityDoc]
	leaderboard *rankedCollection
	workouts    *collection[domain.Workout, workoutDoc]
}

// Connect dials uri, verifies the connection and ensures indexes on database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := New(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps an existing client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	byID := bson.D{{Key: "_id", Value: 1}}
	return &Store{
		client: client,
		db:     db,
		users: &collection[domain.User, userDoc]{
			coll:    db.Collection("users"),
			sort:    byID,
			toDoc:   newUserDoc,
			fromDoc: userDoc.toDomain,
		},
		teams: &collection[domain.Team, teamDoc]{
			coll:    db.Collection("teams"),
			sort:    byID,
			toDoc:   newTeamDoc,
			fromDoc: teamDoc.toDomain,
		},
		activities: &collection[domain.Activity, activityDoc]{
			coll:    db.Collection("activities"),
			sort:    byID,
			toDoc:   newActivityDoc,
			fromDoc: activityDoc.toDomain,
			inserted: func(d activityDoc) {
				observability.RecordActivityPersisted(d.Date)
			},
		},
		leaderboard: &rankedCollection{
			collection: collection[domain.LeaderboardEntry, leaderboardDoc]{
				coll:    db.Collection(leaderboardCollection),
				sort:    bson.D{{Key: "rank", Value: 1}, {Key: "_id", Value: 1}},
				toDoc:   newLeaderboardDoc,
				fromDoc: leaderboardDoc.toDomain,
			},
			db: db,
		},
		workouts: &collection[domain.Workout, workoutDoc]{
			coll:    db.Collection("workouts"),
			sort:    bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
			toDoc:   newWorkoutDoc,
			fromDoc: workoutDoc.toDomain,
		},
	}
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		"teams": {{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		"activities": {{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		}},
		leaderboardCollection: leaderboardIndexes(),
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Users() domain.Collection[domain.User] { return s.users }

func (s *Store) Teams() domain.Collection[domain.Team] { return s.teams }

func (s *Store) Activities() domain.Collection[domain.Activity] { return s.activities }

func (s *Store) Leaderboard() domain.LeaderboardCollection { return s.leaderboard }

func (s *Store) Workouts() domain.Collection[domain.Workout] { return s.workouts }

// Ping checks connectivity to the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// collection adapts a Mongo collection of D documents to domain.Collection[T].
type collection[T any, D any] struct {
	coll     *mongo.Collection
	sort     bson.D
	toDoc    func(T) D
	fromDoc  func(D) T
	inserted func(D)
}

func (c *collection[T, D]) Insert(ctx context.Context, record T) (T, error) {
	doc := c.toDoc(record)
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		var zero T
		return zero, translate(err)
	}
	observability.RecordInserted(c.coll.Name())
	if c.inserted != nil {
		c.inserted(doc)
	}
	return c.fromDoc(doc), nil
}

func (c *collection[T, D]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return zero, domain.ErrNotFound
	}
	var doc D
	if err := c.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return zero, translate(err)
	}
	return c.fromDoc(doc), nil
}

func (c *collection[T, D]) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *collection[T, D]) DeleteAll(ctx context.Context) error {
	_, err := c.coll.DeleteMany(ctx, bson.D{})
	return err
}

func (c *collection[T, D]) Filter(ctx context.Context, q domain.Query) ([]T, error) {
	opts := options.Find().SetSort(c.sort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}
	cur, err := c.coll.Find(ctx, filterFor(q), opts)
	if err != nil {
		return nil, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	results := make([]T, 0, len(docs))
	for _, d := range docs {
		results = append(results, c.fromDoc(d))
	}
	return results, nil
}

func (c *collection[T, D]) Count(ctx context.Context, q domain.Query) (int, error) {
	n, err := c.coll.CountDocuments(ctx, filterFor(q))
	return int(n), err
}

// filterFor builds an equality filter. An empty value also matches a missing field.
func filterFor(q domain.Query) bson.D {
	if q.Field == "" {
		return bson.D{}
	}
	if q.Value == "" {
		return bson.D{{Key: q.Field, Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}}}
	}
	return bson.D{{Key: q.Field, Value: q.Value}}
}

func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	default:
		return err
	}
}
