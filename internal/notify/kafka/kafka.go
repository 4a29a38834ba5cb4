// Package kafka shares ledger change events between service instances
// through a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify"
)

const originHeader = "origin"

// publishBatchTimeout bounds how long Publish waits for a batch to fill. Events
// are published one at a time on the request path.
const publishBatchTimeout = 10 * time.Millisecond

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Publisher is a notify.Sink writing events to a Kafka topic.
type Publisher struct {
	writer messageWriter
	origin string
}

var _ notify.Sink = (*Publisher)(nil)

// NewPublisher creates a Publisher for topic. origin identifies this instance
// so its own consumer can skip events it already delivered locally.
func NewPublisher(brokers []string, topic, origin string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: publishBatchTimeout,
		},
		origin: origin,
	}
}

// Publish writes event as a JSON message keyed by the creditor, so every event
// for one pair of users lands on the same partition in order.
func (p *Publisher) Publish(ctx context.Context, event notify.Event) error {
	msg, err := encode(event, p.origin)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write change event: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Deliverer is the local side of a Hub.
type Deliverer interface {
	Deliver(event notify.Event)
}

// Consumer reads events published by other instances and delivers them to
// local subscribers.
type Consumer struct {
	reader messageReader
	origin string
}

// NewConsumer creates a Consumer in consumer group groupID. Each instance
// should use its own group so that every instance sees every event.
func NewConsumer(brokers []string, topic, groupID, origin string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}),
		origin: origin,
	}
}

// Run delivers events until ctx is cancelled. Malformed messages are logged
// and skipped.
func (c *Consumer) Run(ctx context.Context, hub Deliverer) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to read change event: %w", err)
		}

		event, origin, err := decode(msg)
		if err != nil {
			slog.Warn("Skipping malformed change event", "offset", msg.Offset, "error", err)
			continue
		}
		if origin == c.origin {
			continue
		}
		hub.Deliver(event)
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func encode(event notify.Event, origin string) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode change event: %w", err)
	}
	return kafka.Message{
		Key:     []byte(event.ToUser),
		Value:   data,
		Headers: []kafka.Header{{Key: originHeader, Value: []byte(origin)}},
	}, nil
}

func decode(msg kafka.Message) (notify.Event, string, error) {
	var event notify.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return notify.Event{}, "", err
	}
	var origin string
	for _, h := range msg.Headers {
		if h.Key == originHeader {
			origin = string(h.Value)
		}
	}
	return event, origin, nil
}
