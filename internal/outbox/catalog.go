package outbox

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"example.com/octofit/internal/events"
)

// Kafka topics carrying octofit events.
const (
	TopicActivities  = "octofit_activities"
	TopicLeaderboard = "octofit_leaderboard"
)

var topicCatalog = map[string]string{
	events.TypeActivityRecorded:   TopicActivities,
	events.TypeLeaderboardRebuilt: TopicLeaderboard,
}

// TopicFor returns the topic an event type is published to.
func TopicFor(eventType string) (string, bool) {
	topic, ok := topicCatalog[eventType]
	return topic, ok
}

// Event is a pending outbox row.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	PartitionKey  string
	Payload       any
}

// Enqueue inserts the event into the outbox using tx, so it commits or rolls
// back with the write that produced it.
func Enqueue(ctx context.Context, tx pgx.Tx, ev Event) error {
	topic, ok := TopicFor(ev.EventType)
	if !ok {
		return fmt.Errorf("unknown event type: %s", ev.EventType)
	}
	body, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", ev.EventType, err)
	}
	partitionKey := ev.PartitionKey
	if partitionKey == "" {
		partitionKey = ev.AggregateID
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		ev.AggregateType,
		ev.AggregateID,
		ev.EventType,
		topic,
		partitionKey,
		body,
		fmt.Sprintf("%s:%s", ev.AggregateID, ev.EventType),
	)
	return err
}
