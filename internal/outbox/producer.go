package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const producerClientID = "octofit-outbox"

// KafkaProducer writes octofit events, keeping one writer per catalog topic.
// Messages are hashed on their key so every event for one user or rebuild run
// lands on the same partition and keeps its order.
type KafkaProducer struct {
	brokers   []string
	transport *kafka.Transport
	mu        sync.Mutex
	writers   map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer for brokers.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers:   brokers,
		transport: &kafka.Transport{ClientID: producerClientID},
		writers:   make(map[string]*kafka.Writer),
	}
}

// WriteMessages publishes msgs to topic. Topics outside the event catalog are
// refused before any broker is contacted.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer, err := p.writerForTopic(topic)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) (*kafka.Writer, error) {
	if !knownTopic(topic) {
		return nil, fmt.Errorf("topic %q is not in the event catalog", topic)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer, nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 50 * time.Millisecond,
		Transport:    p.transport,
	}
	p.writers[topic] = writer
	return writer, nil
}

// Close flushes and releases every writer.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	p.transport.CloseIdleConnections()
	return firstErr
}

func knownTopic(topic string) bool {
	for _, known := range topicCatalog {
		if known == topic {
			return true
		}
	}
	return false
}
