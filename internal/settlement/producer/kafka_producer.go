package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/viralfx/viralfx-platform/pkg/contracts/events"
)

// KafkaPublisher emite eventos market_settled para consumidores downstream
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishMarketSettled(ctx context.Context, ev events.MarketSettled) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.MarketID), Value: b})
}
