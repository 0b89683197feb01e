// Package events publishes allocation lifecycle envelopes to the
// platform's Kafka event stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Type names one lifecycle event.
type Type string

const (
	TypeAllocationCreated   Type = "allocation.created"
	TypeAllocationCompleted Type = "allocation.completed"
	TypeAllocationFailed    Type = "allocation.failed"
	TypeEscalationRaised    Type = "escalation.raised"
)

// Topics the coordination core publishes to.
const (
	TopicAllocations = "seiri.allocations"
	TopicEscalations = "seiri.escalations"
)

// TopicFor maps an event type to its topic.
func TopicFor(t Type) string {
	if t == TypeEscalationRaised {
		return TopicEscalations
	}
	return TopicAllocations
}

// Envelope wraps every event on the stream. CorrelationID ties an event to
// its allocation request or escalation record.
type Envelope struct {
	Type          Type            `json:"type"`
	CorrelationID string          `json:"correlation_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope builds an envelope with the payload marshaled to JSON.
func NewEnvelope(t Type, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s payload: %w", t, err)
	}
	return Envelope{
		Type:          t,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
		Payload:       raw,
	}, nil
}

// Publisher delivers envelopes to the event stream.
type Publisher interface {
	// Publish sends one envelope to the topic its type maps to.
	Publish(ctx context.Context, env Envelope) error
	// Close releases the underlying transport.
	Close() error
}

// KafkaPublisher implements Publisher using segmentio/kafka-go.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for a comma-separated broker list.
// Keying messages by correlation ID keeps one request's events in a single
// partition, so consumers see them in order.
func NewKafkaPublisher(brokers string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

// Publish writes the envelope, retrying transient broker errors with a
// short linear backoff.
func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Topic: TopicFor(env.Type),
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  env.Timestamp,
	}

	var writeErr error
	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			slog.Debug("Event publish retry", "type", env.Type, "attempt", attempt, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		writeErr = p.writer.WriteMessages(ctx, msg)
		if writeErr == nil {
			return nil
		}
	}
	return fmt.Errorf("events: publish %s: %w", env.Type, writeErr)
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// ChannelPublisher is a test/in-process Publisher backed by a Go channel.
type ChannelPublisher struct {
	ch chan Envelope
}

// NewChannelPublisher creates an in-process publisher for testing.
func NewChannelPublisher() *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan Envelope, 100)}
}

// Publish pushes the envelope into the channel.
func (p *ChannelPublisher) Publish(ctx context.Context, env Envelope) error {
	select {
	case p.ch <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the envelope channel.
func (p *ChannelPublisher) Events() <-chan Envelope { return p.ch }

// Close closes the channel.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
