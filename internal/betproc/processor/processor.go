package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/betproc/pubsub"
	"github.com/viralfx/viralfx-platform/internal/betproc/repo"
	"github.com/viralfx/viralfx-platform/pkg/contracts/events"
	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

// Repo aplica o efeito persistente de uma aposta aceita
type Repo interface {
	AcceptBet(ctx context.Context, betID string) ([]events.OutcomePrice, int64, error)
	RejectBet(ctx context.Context, betID, reason string) error
}

// Wallet efetiva/estorna a reserva feita na colocação da aposta
type Wallet interface {
	Commit(ctx context.Context, userID, externalRef string) error
	Refund(ctx context.Context, userID, externalRef string) error
}

// Cache guarda os preços correntes por mercado
type Cache interface {
	SetCurrent(ctx context.Context, u events.PriceUpdate) error
}

// Broadcaster publica atualizações de preço para o WS do signal-service
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor efetiva apostas: commit da reserva, pool/preços e broadcast
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log       *zap.Logger
	Repo      Repo
	Wallet    Wallet
	Cache     Cache
	Broadcast Broadcaster
	Channel   string

	OnAccepted func()       // métricas (counter++)
	OnError    func(string) // métricas por fase
}

// ProcessNewBet efetiva uma aposta PENDING:
// 1. commit da reserva na wallet (falha rejeita a aposta e estorna)
// 2. aceita a aposta e recalcula pools/preços do mercado
// 3. cacheia os preços correntes e publica o update (falhas não bloqueiam)
func (p *Processor) ProcessNewBet(ctx context.Context, job jobs.NewBetJob) error {
	if err := p.Wallet.Commit(ctx, job.UserID, job.BetID); err != nil {
		if p.OnError != nil {
			p.OnError("wallet_commit")
		}
		if rerr := p.Repo.RejectBet(ctx, job.BetID, "wallet commit failed"); rerr != nil {
			p.Log.Warn("reject bet", zap.String("betId", job.BetID), zap.Error(rerr))
		}
		return fmt.Errorf("commit reservation for bet %s: %w", job.BetID, err)
	}

	prices, version, err := p.Repo.AcceptBet(ctx, job.BetID)
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyProcessed) {
			// redelivery de job já aplicado; nada a fazer
			p.Log.Info("bet already processed", zap.String("betId", job.BetID))
			return nil
		}
		if errors.Is(err, repo.ErrMarketNotOpen) {
			// mercado fechou antes do processamento: estorna e rejeita,
			// sem retry (o job nunca vai ser aceitável)
			p.Log.Info("market closed before bet processing", zap.String("betId", job.BetID), zap.String("marketId", job.MarketID))
			if p.OnError != nil {
				p.OnError("market_closed")
			}
			if rerr := p.Wallet.Refund(ctx, job.UserID, job.BetID); rerr != nil {
				p.Log.Error("refund after market close", zap.String("betId", job.BetID), zap.Error(rerr))
				return fmt.Errorf("refund bet %s on closed market: %w", job.BetID, rerr)
			}
			if rerr := p.Repo.RejectBet(ctx, job.BetID, "market not open"); rerr != nil {
				p.Log.Warn("reject bet", zap.String("betId", job.BetID), zap.Error(rerr))
			}
			return nil
		}
		if p.OnError != nil {
			p.OnError("accept")
		}
		// reserva já committed; devolve o valor antes de rejeitar
		if rerr := p.Wallet.Refund(ctx, job.UserID, job.BetID); rerr != nil {
			p.Log.Error("refund after accept failure", zap.String("betId", job.BetID), zap.Error(rerr))
		}
		if rerr := p.Repo.RejectBet(ctx, job.BetID, "accept failed"); rerr != nil {
			p.Log.Warn("reject bet", zap.String("betId", job.BetID), zap.Error(rerr))
		}
		return fmt.Errorf("accept bet %s: %w", job.BetID, err)
	}

	if p.OnAccepted != nil {
		p.OnAccepted()
	}

	upd := events.PriceUpdate{
		MarketID:  job.MarketID,
		Prices:    prices,
		Version:   version,
		UpdatedAt: time.Now().UTC(),
		Source:    "bet-processing-worker",
	}

	if err := p.Cache.SetCurrent(ctx, upd); err != nil {
		p.Log.Warn("price cache set failed", zap.String("marketId", job.MarketID), zap.Error(err))
		if p.OnError != nil {
			p.OnError("cache")
		}
		// não bloqueia o broadcast se falhar o cache
	}

	msg := pubsub.WSUpdate{MarketID: job.MarketID, Payload: upd}
	b, _ := json.Marshal(msg)
	bctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := p.Broadcast.Publish(bctx, p.Channel, b); err != nil {
		p.Log.Warn("ws broadcast publish failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("broadcast")
		}
	}

	return nil
}
