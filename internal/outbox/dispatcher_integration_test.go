//go:build integration

package outbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/octofit/internal/events"
)

func TestDispatcherPublishesMessages(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)

	activityID := uuid.NewString()
	enqueue(t, ctx, pool, Event{
		AggregateType: events.AggregateActivity,
		AggregateID:   activityID,
		EventType:     events.TypeActivityRecorded,
		Payload:       events.ActivityRecorded{ActivityID: activityID, UserID: "u-1", CaloriesBurned: 450},
	})
	runID := uuid.NewString()
	enqueue(t, ctx, pool, Event{
		AggregateType: events.AggregateLeaderboard,
		AggregateID:   runID,
		EventType:     events.TypeLeaderboardRebuilt,
		Payload:       events.LeaderboardRebuilt{RunID: runID, EntriesWritten: 3},
	})

	producer := &stubProducer{}
	dispatcher := NewDispatcher(pool, producer, 10*time.Millisecond, 5)

	beforeActivities := testutil.ToFloat64(deliveredCounter.WithLabelValues(events.TypeActivityRecorded))
	beforeRebuilds := testutil.ToFloat64(deliveredCounter.WithLabelValues(events.TypeLeaderboardRebuilt))
	beforeHistogram := histogramSampleCount(t)

	require.NoError(t, dispatcher.processBatch(ctx))

	require.Len(t, producer.writes, 2)
	require.Equal(t, TopicActivities, producer.writes[0].topic)
	require.Equal(t, TopicLeaderboard, producer.writes[1].topic)
	require.Equal(t, []byte(activityID), producer.writes[0].messages[0].Key)

	require.InDelta(t, beforeActivities+1, testutil.ToFloat64(deliveredCounter.WithLabelValues(events.TypeActivityRecorded)), 0.0001)
	require.InDelta(t, beforeRebuilds+1, testutil.ToFloat64(deliveredCounter.WithLabelValues(events.TypeLeaderboardRebuilt)), 0.0001)
	require.Greater(t, histogramSampleCount(t), beforeHistogram)

	var published int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE published_at IS NOT NULL`).Scan(&published))
	require.Equal(t, 2, published)

	// A second pass finds nothing left to send.
	require.NoError(t, dispatcher.processBatch(ctx))
	require.Len(t, producer.writes, 2)
}

func TestEnqueueDeduplicatesEvents(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)

	ev := Event{
		AggregateType: events.AggregateLeaderboard,
		AggregateID:   "run-1",
		EventType:     events.TypeLeaderboardRebuilt,
		Payload:       events.LeaderboardRebuilt{RunID: "run-1"},
	}
	enqueue(t, ctx, pool, ev)
	enqueue(t, ctx, pool, ev)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestDispatcherRoutesMessagesToDLQOnFailure(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)

	activityID := uuid.NewString()
	enqueue(t, ctx, pool, Event{
		AggregateType: events.AggregateActivity,
		AggregateID:   activityID,
		EventType:     events.TypeActivityRecorded,
		Payload:       events.ActivityRecorded{ActivityID: activityID},
	})

	producer := &stubProducer{err: errors.New("kafka write failed")}
	dispatcher := NewDispatcher(pool, producer, 10*time.Millisecond, 5)

	beforeFailed := testutil.ToFloat64(failedCounter.WithLabelValues(events.TypeActivityRecorded))
	beforeDLQ := testutil.ToFloat64(dlqCounter.WithLabelValues(TopicActivities, events.TypeActivityRecorded))

	require.NoError(t, dispatcher.processBatch(ctx))

	require.InDelta(t, beforeFailed+1, testutil.ToFloat64(failedCounter.WithLabelValues(events.TypeActivityRecorded)), 0.0001)
	require.InDelta(t, beforeDLQ+1, testutil.ToFloat64(dlqCounter.WithLabelValues(TopicActivities, events.TypeActivityRecorded)), 0.0001)

	var (
		dlqCount int
		reason   string
	)
	err := pool.QueryRow(ctx, `SELECT COUNT(*), MAX(reason) FROM outbox_dlq WHERE aggregate_id = $1`, activityID).Scan(&dlqCount, &reason)
	require.NoError(t, err)
	require.Equal(t, 1, dlqCount)
	require.Contains(t, reason, "kafka write failed")

	var published int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE published_at IS NOT NULL`).Scan(&published))
	require.Equal(t, 1, published)
}

func TestDispatcherUnroutableEventMovesBatchToDLQ(t *testing.T) {
	ctx := context.Background()
	pool := setupPostgres(t, ctx)

	var eventID int64
	err := pool.QueryRow(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
         VALUES ('activity', 'a-1', 'activity.unknown', $1, 'a-1', '{}', 'a-1:activity.unknown')
         RETURNING event_id`,
		TopicActivities,
	).Scan(&eventID)
	require.NoError(t, err)

	producer := &stubProducer{}
	dispatcher := NewDispatcher(pool, producer, 10*time.Millisecond, 5)

	require.NoError(t, dispatcher.processBatch(ctx))
	require.Empty(t, producer.writes)

	var reason string
	require.NoError(t, pool.QueryRow(ctx, `SELECT reason FROM outbox_dlq WHERE event_id = $1`, eventID).Scan(&reason))
	require.Contains(t, reason, "no route for event_type=activity.unknown")
}

type stubProducer struct {
	mu     sync.Mutex
	err    error
	writes []writtenBatch
}

type writtenBatch struct {
	topic    string
	messages []kafka.Message
}

func (s *stubProducer) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, writtenBatch{topic: topic, messages: append([]kafka.Message(nil), msgs...)})
	return nil
}

func enqueue(t *testing.T, ctx context.Context, pool *pgxpool.Pool, ev Event) {
	t.Helper()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, Enqueue(ctx, tx, ev))
	require.NoError(t, tx.Commit(ctx))
}

func histogramSampleCount(t *testing.T) uint64 {
	t.Helper()

	metric := &dto.Metric{}
	require.NoError(t, batchDuration.Write(metric))
	hist := metric.GetHistogram()
	require.NotNil(t, hist)
	return hist.GetSampleCount()
}

func setupPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("octofit"),
		postgrescontainer.WithUsername("octofit"),
		postgrescontainer.WithPassword("octofit"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	files, err := filepath.Glob(filepath.Join(resolvePath(t, "../../db/postgres/migrations"), "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "expected at least one migration .up.sql file")
	sort.Strings(files)

	for _, file := range files {
		contents, readErr := os.ReadFile(file)
		require.NoErrorf(t, readErr, "read migration %s", file)
		_, execErr := pool.Exec(ctx, string(contents))
		require.NoErrorf(t, execErr, "execute migration %s", file)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
