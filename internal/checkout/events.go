package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/maaaahin/drugo-storefront/internal/domain"
)

// OrderPlacedEvent is emitted after a commit succeeds so other components
// (order history, notifications) can react.
type OrderPlacedEvent struct {
	IdempotencyKey string           `json:"idempotency_key"`
	Address        string           `json:"address"`
	Items          []domain.Product `json:"items"`
	TotalAmount    float64          `json:"total_amount"`
	PlacedAt       time.Time        `json:"placed_at"`
}

type Publisher interface {
	OrderPlaced(ctx context.Context, event OrderPlacedEvent) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-placed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.IdempotencyKey), // attempt key for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.placed")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
