// Package consumer reads octofit domain events from Kafka and hands them to a Handler.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"example.com/octofit/internal/logging"
)

// Reader is the subset of *kafka.Reader the processor drives.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded events.
type Handler interface {
	Handle(context.Context, Message) error
}

// Message is one event published by the outbox dispatcher.
type Message struct {
	Topic         string
	Partition     int
	Offset        int64
	Timestamp     time.Time
	EventType     string
	AggregateType string
	AggregateID   string
	Payload       json.RawMessage
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger overrides the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithRetryBackoff sets the pause after a failed fetch or before a handler retry.
func WithRetryBackoff(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.backoff = d
		}
	}
}

// Processor pulls messages, decodes them and dispatches to a Handler. A message
// is committed only once the handler accepts it, so delivery is at least once.
type Processor struct {
	reader  Reader
	handler Handler
	logger  zerolog.Logger
	backoff time.Duration
}

// NewProcessor constructs a Processor.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  logging.WithComponent("consumer"),
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Serve processes messages until ctx is cancelled.
func (p *Processor) Serve(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn().Err(err).Msg("fetch failed")
			p.wait(ctx)
			continue
		}

		event, err := decodeMessage(msg)
		if err != nil {
			p.logger.Warn().Err(err).
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("dropping undecodable message")
			recordDecodeError(msg.Topic)
			// Malformed records are committed so they cannot block the partition.
			if err := p.reader.CommitMessages(ctx, msg); err != nil {
				p.logger.Warn().Err(err).Msg("commit after decode failure")
			}
			continue
		}

		if err := p.handle(ctx, event); err != nil {
			return err
		}

		if err := p.reader.CommitMessages(ctx, msg); err != nil {
			p.logger.Warn().Err(err).Msg("commit failed")
			continue
		}
		recordProcessed(event)
	}
}

// handle retries the same event until the handler accepts it. Later offsets
// are never fetched while an earlier one is outstanding, so a commit can
// never move the group past an unhandled event.
func (p *Processor) handle(ctx context.Context, event Message) error {
	for {
		err := p.handler.Handle(ctx, event)
		if err == nil {
			return nil
		}
		p.logger.Error().Err(err).
			Str("event_type", event.EventType).
			Str("aggregate_id", event.AggregateID).
			Int64("offset", event.Offset).
			Msg("handler failed, retrying")
		recordHandlerError(event)
		p.wait(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (p *Processor) String() string { return "event-consumer" }

func (p *Processor) wait(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func decodeMessage(msg kafka.Message) (Message, error) {
	eventType, ok := headerValue(msg, "event_type")
	if !ok || len(eventType) == 0 {
		return Message{}, errors.New("missing event_type header")
	}
	if !json.Valid(msg.Value) {
		return Message{}, fmt.Errorf("payload of %s is not valid JSON", eventType)
	}
	aggregateType, _ := headerValue(msg, "aggregate_type")
	aggregateID, ok := headerValue(msg, "aggregate_id")
	if !ok {
		aggregateID = msg.Key
	}

	return Message{
		Topic:         msg.Topic,
		Partition:     msg.Partition,
		Offset:        msg.Offset,
		Timestamp:     msg.Time,
		EventType:     string(eventType),
		AggregateType: string(aggregateType),
		AggregateID:   string(aggregateID),
		Payload:       json.RawMessage(append([]byte(nil), msg.Value...)),
	}, nil
}

func headerValue(msg kafka.Message, key string) ([]byte, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value, true
		}
	}
	return nil, false
}
