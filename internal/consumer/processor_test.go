package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func activityMessage(offset int64, payload string) kafka.Message {
	return kafka.Message{
		Topic:     "octofit_activities",
		Partition: 0,
		Offset:    offset,
		Time:      time.Now().UTC(),
		Key:       []byte("act-1"),
		Value:     []byte(payload),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("activity.recorded")},
			{Key: "aggregate_type", Value: []byte("activity")},
			{Key: "aggregate_id", Value: []byte("act-1")},
		},
	}
}

func newTestProcessor(reader Reader, handler Handler) *Processor {
	return NewProcessor(reader, handler, WithLogger(zerolog.Nop()), WithRetryBackoff(time.Millisecond))
}

func TestProcessorCommitsOnSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := `{"activity_id":"act-1","calories_burned":450}`
	reader := &stubReader{messages: []kafka.Message{activityMessage(10, payload)}, cancel: cancel}
	handler := &stubHandler{}

	err := newTestProcessor(reader, handler).Serve(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, "activity.recorded", handler.last.EventType)
	require.Equal(t, "activity", handler.last.AggregateType)
	require.Equal(t, "act-1", handler.last.AggregateID)
	require.Equal(t, int64(10), handler.last.Offset)
	require.JSONEq(t, payload, string(handler.last.Payload))
}

func TestProcessorRetriesFailedMessageBeforeMovingOn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{
		messages: []kafka.Message{
			activityMessage(1, `{"activity_id":"act-1"}`),
			activityMessage(2, `{"activity_id":"act-2"}`),
		},
		cancel: cancel,
	}
	handler := &stubHandler{failures: map[int64]int{1: 2}}
	before := testutil.ToFloat64(handlerErrorCounter.WithLabelValues("octofit_activities", "activity.recorded"))

	err := newTestProcessor(reader, handler).Serve(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, []int64{1, 1, 1, 2}, handler.offsets)
	require.Equal(t, []int64{1, 2}, reader.committed)
	require.Equal(t, before+2, testutil.ToFloat64(handlerErrorCounter.WithLabelValues("octofit_activities", "activity.recorded")))
}

func TestProcessorStopsRetryingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{
		messages: []kafka.Message{
			activityMessage(5, `{"activity_id":"act-5"}`),
			activityMessage(6, `{"activity_id":"act-6"}`),
		},
		cancel: cancel,
	}
	handler := &stubHandler{err: errors.New("boom"), cancelAfter: 3, cancel: cancel}

	err := newTestProcessor(reader, handler).Serve(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, []int64{5, 5, 5}, handler.offsets)
	require.Empty(t, reader.committed)
	require.Equal(t, 1, reader.index)
}

func TestProcessorCommitsUndecodableMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	noHeader := kafka.Message{Topic: "octofit_leaderboard", Offset: 1, Value: []byte(`{}`)}
	badJSON := activityMessage(2, `{"activity_id":`)
	reader := &stubReader{messages: []kafka.Message{noHeader, badJSON}, cancel: cancel}
	handler := &stubHandler{}

	err := newTestProcessor(reader, handler).Serve(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Zero(t, handler.calls)
	require.Equal(t, 2, reader.commitCalls)
}

func TestDecodeMessageFallsBackToKey(t *testing.T) {
	msg := kafka.Message{
		Topic:   "octofit_leaderboard",
		Key:     []byte("run-7"),
		Value:   []byte(`{"run_id":"run-7","entries_written":3}`),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte("leaderboard.rebuilt")}},
	}

	decoded, err := decodeMessage(msg)
	require.NoError(t, err)
	require.Equal(t, "run-7", decoded.AggregateID)
	require.Equal(t, "leaderboard.rebuilt", decoded.EventType)
}

// stubReader replays messages and then cancels the processor's context.
type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
	committed   []int64
	cancel      context.CancelFunc
}

func (r *stubReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.commitCalls++
	for _, msg := range msgs {
		r.committed = append(r.committed, msg.Offset)
	}
	return nil
}

func (r *stubReader) Close() error { return nil }

// stubHandler fails each offset the number of times listed in failures, or
// always when err is set.
type stubHandler struct {
	calls       int
	err         error
	failures    map[int64]int
	offsets     []int64
	last        Message
	cancelAfter int
	cancel      context.CancelFunc
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	h.offsets = append(h.offsets, msg.Offset)
	if h.cancelAfter > 0 && h.calls >= h.cancelAfter {
		h.cancel()
	}
	if h.failures[msg.Offset] > 0 {
		h.failures[msg.Offset]--
		return errors.New("transient")
	}
	return h.err
}
