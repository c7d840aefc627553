package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Publisher writes domain events to Kafka.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish serializes the event as JSON and writes it to the topic.
func (p *Publisher) Publish(topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Value: data,
	})
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
