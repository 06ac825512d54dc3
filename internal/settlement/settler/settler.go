package settler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/pkg/contracts/events"
	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

var (
	ErrMarketAlreadySettled  = errors.New("market already settled")
	ErrMissingWinningOutcome = errors.New("winningOutcomeId required for manual settlement")
	ErrUnknownWinningOutcome = errors.New("winningOutcomeId does not belong to market")
)

// Snapshot é o estado de um mercado no momento da liquidação.
type Snapshot struct {
	MarketID string
	Status   string // OPEN | CLOSED | SETTLED | VOIDED
	Outcomes []OutcomePool
	Bets     []BetStake // apenas apostas ACCEPTED
}

type OutcomePool struct {
	OutcomeID string
	Label     string
	PoolCents int64
}

// BetStake é a fatia de uma aposta aceita no pool.
type BetStake struct {
	BetID       string
	UserID      string
	OutcomeID   string
	AmountCents int64
}

type SettleRequest struct {
	MarketID         string
	Reason           string
	WinningOutcomeID string
	Method           jobs.SettlementMethod
}

type SettleResult struct {
	MarketID         string
	Status           string // SETTLED | VOIDED
	WinningOutcomeID string
	Method           jobs.SettlementMethod
	TotalPoolCents   int64
	PaidOutCents     int64
	RakeCents        int64
}

// Repo define a persistência usada pelo settler
type Repo interface {
	LoadSnapshot(ctx context.Context, marketID string) (*Snapshot, error)
	MarkSettled(ctx context.Context, res *SettleResult, payouts []Payout, reason string) error
	MarkVoided(ctx context.Context, marketID, reason string) error
	CloseMarket(ctx context.Context, marketID, reason string) error
}

// Wallet define as operações de carteira usadas nos payouts/estornos
type Wallet interface {
	Credit(ctx context.Context, userID string, cents int64, externalRef string) error
	Refund(ctx context.Context, userID, externalRef string) error
}

// Events publica o evento market_settled após uma liquidação bem-sucedida
type Events interface {
	PublishMarketSettled(ctx context.Context, ev events.MarketSettled) error
}

// Settler resolve o outcome vencedor de um mercado e distribui o pool
// entre as apostas vencedoras (modelo parimutuel, rake sobre o pool perdedor)
type Settler struct {
	Log     *zap.Logger
	Repo    Repo
	Wallet  Wallet
	Events  Events // opcional
	RakeBps int
}

// SettleMarket liquida um mercado:
// 1. carrega snapshot e rejeita mercados já liquidados
// 2. resolve o vencedor (manual ou automático)
// 3. empate/pool vazio anula o mercado e estorna as apostas
// 4. credita payouts (idempotentes por betId) e só então persiste a liquidação
func (s *Settler) SettleMarket(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	snap, err := s.Repo.LoadSnapshot(ctx, req.MarketID)
	if err != nil {
		return nil, fmt.Errorf("load market %s: %w", req.MarketID, err)
	}
	if snap.Status == "SETTLED" || snap.Status == "VOIDED" {
		return nil, ErrMarketAlreadySettled
	}

	total := int64(0)
	for _, o := range snap.Outcomes {
		total += o.PoolCents
	}

	winnerID, voided, err := s.resolveWinner(req, snap)
	if err != nil {
		return nil, err
	}

	if voided {
		// estorno de todas as apostas aceitas
		for _, b := range snap.Bets {
			if werr := s.Wallet.Refund(ctx, b.UserID, b.BetID); werr != nil {
				return nil, fmt.Errorf("refund bet %s: %w", b.BetID, werr)
			}
		}
		res := &SettleResult{
			MarketID:       req.MarketID,
			Status:         "VOIDED",
			Method:         req.Method,
			TotalPoolCents: total,
		}
		if err := s.Repo.MarkVoided(ctx, req.MarketID, req.Reason); err != nil {
			return nil, fmt.Errorf("mark voided %s: %w", req.MarketID, err)
		}
		s.Log.Info("market voided",
			zap.String("marketId", req.MarketID),
			zap.Int64("total_pool_cents", total),
			zap.String("reason", req.Reason),
		)
		s.publishSettled(ctx, res, req.Reason)
		return res, nil
	}

	plan := ComputePayouts(snap.Bets, winnerID, s.RakeBps)

	// payouts antes da persistência: o crédito é idempotente por betId,
	// então um retry do job nunca paga duas vezes
	for _, p := range plan.Payouts {
		if werr := s.Wallet.Credit(ctx, p.UserID, p.AmountCents, p.BetID); werr != nil {
			return nil, fmt.Errorf("credit bet %s: %w", p.BetID, werr)
		}
	}

	res := &SettleResult{
		MarketID:         req.MarketID,
		Status:           "SETTLED",
		WinningOutcomeID: winnerID,
		Method:           req.Method,
		TotalPoolCents:   total,
		PaidOutCents:     plan.PaidOutCents,
		RakeCents:        plan.RakeCents,
	}
	if err := s.Repo.MarkSettled(ctx, res, plan.Payouts, req.Reason); err != nil {
		return nil, fmt.Errorf("mark settled %s: %w", req.MarketID, err)
	}

	s.Log.Info("market settled",
		zap.String("marketId", req.MarketID),
		zap.String("winningOutcomeId", winnerID),
		zap.String("method", string(req.Method)),
		zap.Int64("paid_out_cents", plan.PaidOutCents),
		zap.Int64("rake_cents", plan.RakeCents),
	)
	s.publishSettled(ctx, res, req.Reason)
	return res, nil
}

// publishSettled emite o evento market_settled; falha de broker não desfaz a liquidação
func (s *Settler) publishSettled(ctx context.Context, res *SettleResult, reason string) {
	if s.Events == nil {
		return
	}
	ev := events.MarketSettled{
		MarketID:         res.MarketID,
		WinningOutcomeID: res.WinningOutcomeID,
		Method:           string(res.Method),
		Status:           res.Status,
		TotalPoolCents:   res.TotalPoolCents,
		PaidOutCents:     res.PaidOutCents,
		RakeCents:        res.RakeCents,
		Reason:           reason,
		Ts:               time.Now().UTC(),
	}
	if err := s.Events.PublishMarketSettled(ctx, ev); err != nil {
		s.Log.Warn("publish market_settled", zap.String("marketId", res.MarketID), zap.Error(err))
	}
}

// CloseMarket fecha um mercado OPEN para novas apostas
// Mercados já fechados são tratados como no-op (jobs podem ser reentregues)
func (s *Settler) CloseMarket(ctx context.Context, marketID, reason string) error {
	if err := s.Repo.CloseMarket(ctx, marketID, reason); err != nil {
		return fmt.Errorf("close market %s: %w", marketID, err)
	}
	s.Log.Info("market closed", zap.String("marketId", marketID), zap.String("reason", reason))
	return nil
}

// resolveWinner escolhe o outcome vencedor conforme o settlementMethod
func (s *Settler) resolveWinner(req SettleRequest, snap *Snapshot) (winnerID string, voided bool, err error) {
	if req.Method == jobs.MethodManual {
		if req.WinningOutcomeID == "" {
			return "", false, ErrMissingWinningOutcome
		}
		for _, o := range snap.Outcomes {
			if o.OutcomeID == req.WinningOutcomeID {
				return req.WinningOutcomeID, false, nil
			}
		}
		return "", false, ErrUnknownWinningOutcome
	}
	winnerID, voided = ResolveAutomatic(snap.Outcomes)
	return winnerID, voided, nil
}
