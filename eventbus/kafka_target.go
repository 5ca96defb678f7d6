package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaTarget publishes events to a Kafka topic, keyed by the customer so a
// single customer's events land on one partition.
type KafkaTarget struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaTarget(brokers []string, topic string) *KafkaTarget {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaTarget{writer: writer, topic: topic}
}

func (t *KafkaTarget) Name() string { return "kafka:" + t.topic }

func (t *KafkaTarget) Dispatch(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	// Partition by customer when the detail carries one.
	var detail struct {
		UserName string `json:"user_name"`
	}
	key := env.ID
	if err := json.Unmarshal(env.Detail, &detail); err == nil && detail.UserName != "" {
		key = detail.UserName
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
	}
	return t.writer.WriteMessages(ctx, msg)
}

func (t *KafkaTarget) Close() error {
	return t.writer.Close()
}
