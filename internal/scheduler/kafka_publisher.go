package scheduler

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

// KafkaPublisher enfileira jobs do scheduler na fila market-settlement
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishClose(ctx context.Context, j jobs.CloseJob) error {
	b, err := jobs.Encode(jobs.AutoCloseMarket, j)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(j.MarketID), Value: b})
}

func (p *KafkaPublisher) PublishSettlement(ctx context.Context, j jobs.SettlementJob) error {
	b, err := jobs.Encode(jobs.ProcessMarketSettlement, j)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(j.MarketID), Value: b})
}
