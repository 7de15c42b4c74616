// Package notify implements the celebration side effect: when a customer
// leaves a five-star review, an event is published so downstream surfaces
// (the form's confetti, store-front displays, team chat bots) can react. The
// effect is modeled as a narrow interface so the submission flow stays
// decoupled from it and it can be disabled or faked in tests.
package notify

import (
	"context"
	"encoding/json"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

// Event describes one celebration-worthy submission.
type Event struct {
	FeedbackID string    `json:"feedback_id"`
	Rating     int       `json:"rating"`
	Location   string    `json:"location,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Celebrator publishes celebration events. Implementations must be safe for
// concurrent use; the submission flow fires them from their own goroutine.
type Celebrator interface {
	Celebrate(ctx context.Context, ev Event) error
}

// Nop is the disabled celebrator.
type Nop struct{}

// Celebrate does nothing.
func (Nop) Celebrate(context.Context, Event) error { return nil }

// KafkaCelebrator publishes events to a Kafka topic as JSON, keyed by the
// feedback ID.
type KafkaCelebrator struct {
	writer *kafka.Writer
}

// NewKafkaCelebrator builds a publisher over the given brokers and topic.
func NewKafkaCelebrator(brokers []string, topic string) *KafkaCelebrator {
	return &KafkaCelebrator{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Celebrate publishes one event.
func (c *KafkaCelebrator) Celebrate(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.FeedbackID),
		Value: payload,
	})
}

// Close releases the underlying writer.
func (c *KafkaCelebrator) Close() error { return c.writer.Close() }
