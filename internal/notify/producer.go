package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cakeshop-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	orderPlacedTitle = "Đặt hàng thành công"
	orderPlacedBody  = "Đơn hàng của bạn đang chờ cửa hàng xác nhận"
)

// Notifier emits customer-facing notification events. The checkout flow
// treats emission as best effort; a failed publish never rolls back an order.
type Notifier interface {
	OrderPlaced(ctx context.Context, accountID, billID string) error
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Producer publishes notification envelopes to a Kafka topic, keyed by
// account id so one customer's notifications stay ordered.
type Producer struct {
	w writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) OrderPlaced(ctx context.Context, accountID, billID string) error {
	env, err := newEnvelope(EventOrderPlaced, accountID, OrderPlacedPayload{
		BillID: billID,
		Title:  orderPlacedTitle,
		Body:   orderPlacedBody,
	})
	if err != nil {
		return fmt.Errorf("build order-placed event: %w", err)
	}

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal order-placed event: %w", err)
	}

	if err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(accountID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("publish order-placed event: %w", err)
	}

	logger.FromCtx(ctx).Info("order-placed notification published",
		zap.String("account_id", accountID),
		zap.String("bill_id", billID),
		zap.String("event_id", env.EventID),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if w, ok := p.w.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
