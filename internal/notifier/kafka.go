package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes permission events to a Kafka topic as JSON.
// The writer is async, so Notify never blocks the request path.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a KafkaNotifier writing to the given brokers and topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Async:    true,
		Balancer: &kafka.LeastBytes{},
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				slog.Error("kafka publish failed", "count", len(messages), "error", err)
			}
		},
	}
	return &KafkaNotifier{writer: w}
}

// Notify publishes the event. Errors are logged, never returned; permission
// writes must not fail because the broker is down.
func (k *KafkaNotifier) Notify(ctx context.Context, event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("kafka marshal failed", "type", event.Type, "error", err)
		return
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Type),
		Value: payload,
	})
	if err != nil {
		slog.Error("kafka write failed", "type", event.Type, "error", err)
	}
}

// Close flushes and closes the underlying writer.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
