package consumer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventLogHandler appends consumed events to the event_log table.
type EventLogHandler struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewEventLogHandler constructs a handler backed by pool.
func NewEventLogHandler(pool *pgxpool.Pool) *EventLogHandler {
	return &EventLogHandler{pool: pool, now: time.Now}
}

// Handle stores msg. A redelivered record (same topic, partition and offset) is ignored.
func (h *EventLogHandler) Handle(ctx context.Context, msg Message) error {
	receivedAt := msg.Timestamp
	if receivedAt.IsZero() {
		receivedAt = h.now()
	}
	_, err := h.pool.Exec(ctx,
		`INSERT INTO event_log (event_type, aggregate_id, topic, partition, record_offset, payload, received_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         ON CONFLICT (topic, partition, record_offset) DO NOTHING`,
		msg.EventType,
		msg.AggregateID,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		[]byte(msg.Payload),
		receivedAt.UTC(),
	)
	return err
}
