package producer

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

// KafkaPublisher publica jobs nas filas de processamento dos workers
type KafkaPublisher struct {
	BetWriter        *kafka.Writer
	SettlementWriter *kafka.Writer
}

func NewKafkaPublisher(betWriter, settlementWriter *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{BetWriter: betWriter, SettlementWriter: settlementWriter}
}

// PublishNewBet enfileira um job process-new-bet, chaveado por marketId
// para preservar a ordem de apostas do mesmo mercado na partição
func (p *KafkaPublisher) PublishNewBet(ctx context.Context, j jobs.NewBetJob) error {
	b, err := jobs.Encode(jobs.ProcessNewBet, j)
	if err != nil {
		return err
	}
	return p.BetWriter.WriteMessages(ctx, kafka.Message{Key: []byte(j.MarketID), Value: b})
}

// PublishSettlement enfileira um job process-market-settlement
func (p *KafkaPublisher) PublishSettlement(ctx context.Context, j jobs.SettlementJob) error {
	b, err := jobs.Encode(jobs.ProcessMarketSettlement, j)
	if err != nil {
		return err
	}
	return p.SettlementWriter.WriteMessages(ctx, kafka.Message{Key: []byte(j.MarketID), Value: b})
}

// PublishClose enfileira um job auto-close-market
func (p *KafkaPublisher) PublishClose(ctx context.Context, j jobs.CloseJob) error {
	b, err := jobs.Encode(jobs.AutoCloseMarket, j)
	if err != nil {
		return err
	}
	return p.SettlementWriter.WriteMessages(ctx, kafka.Message{Key: []byte(j.MarketID), Value: b})
}
