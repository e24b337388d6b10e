package kafka

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"order-service/models"
)

// Producer publishes order events. A nil *Producer is a valid no-op so the
// service runs without brokers configured.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	w := &kafkago.Writer{
		Addr:     kafkago.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafkago.LeastBytes{},
	}
	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic),
	)
	return &Producer{writer: w, logger: logger}
}

// PublishOrderEvent is best-effort: failures are logged, never surfaced, so
// a broker outage cannot fail a committed order mutation.
func (p *Producer) PublishOrderEvent(ctx context.Context, evt models.OrderEvent) {
	if p == nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("Failed to marshal order event", zap.Error(err))
		return
	}
	msg := kafkago.Message{
		Key:   []byte(evt.OrderID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("Failed to publish order event",
			zap.String("type", evt.Type),
			zap.String("order_id", evt.OrderID),
			zap.Error(err),
		)
		return
	}
	p.logger.Info("Order event published",
		zap.String("type", evt.Type),
		zap.String("order_id", evt.OrderID),
	)
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
