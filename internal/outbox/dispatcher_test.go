package outbox

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/octofit/internal/events"
)

func TestTopicForKnownEvents(t *testing.T) {
	topic, ok := TopicFor(events.TypeActivityRecorded)
	require.True(t, ok)
	require.Equal(t, TopicActivities, topic)

	topic, ok = TopicFor(events.TypeLeaderboardRebuilt)
	require.True(t, ok)
	require.Equal(t, TopicLeaderboard, topic)

	_, ok = TopicFor("activity.unknown")
	require.False(t, ok)
}

func TestMessageCarriesRoutingHeaders(t *testing.T) {
	msg := Message{
		EventID:       7,
		AggregateType: events.AggregateActivity,
		AggregateID:   "act-1",
		EventType:     events.TypeActivityRecorded,
		Topic:         TopicActivities,
		PartitionKey:  "user-1",
		Payload:       []byte(`{"activity_id":"act-1"}`),
	}

	record := msg.kafkaMessage()

	require.Equal(t, []byte("user-1"), record.Key)
	require.JSONEq(t, `{"activity_id":"act-1"}`, string(record.Value))
	headers := map[string]string{}
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, events.TypeActivityRecorded, headers["event_type"])
	require.Equal(t, "act-1", headers["aggregate_id"])
	require.Equal(t, events.AggregateActivity, headers["aggregate_type"])
}

func TestKafkaProducerRefusesUnknownTopic(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:9092"})
	defer producer.Close()

	err := producer.WriteMessages(context.Background(), "octofit_unknown", kafka.Message{Value: []byte(`{}`)})
	require.ErrorContains(t, err, "not in the event catalog")
	require.Empty(t, producer.writers)
}

func TestKafkaProducerReusesWriterPerTopic(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:9092"})

	first, err := producer.writerForTopic(TopicActivities)
	require.NoError(t, err)
	second, err := producer.writerForTopic(TopicActivities)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, TopicActivities, first.Topic)
	require.IsType(t, &kafka.Hash{}, first.Balancer)

	leaderboard, err := producer.writerForTopic(TopicLeaderboard)
	require.NoError(t, err)
	require.NotSame(t, first, leaderboard)

	require.NoError(t, producer.Close())
	require.Empty(t, producer.writers)
}
