package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

// Repo localiza mercados elegíveis
type Repo interface {
	ExpiredOpenMarkets(ctx context.Context, now time.Time) ([]string, error)
	ClosedAutomaticMarkets(ctx context.Context) ([]string, error)
}

// Publisher enfileira os jobs produzidos pelo scheduler
type Publisher interface {
	PublishClose(ctx context.Context, j jobs.CloseJob) error
	PublishSettlement(ctx context.Context, j jobs.SettlementJob) error
}

// Scheduler varre o banco periodicamente e produz jobs de fechamento
// e de liquidação automática para o settlement-worker
type Scheduler struct {
	Log      *zap.Logger
	Repo     Repo
	Publ     Publisher
	Interval time.Duration

	OnEnqueued func(job string) // métricas
}

// Run executa o loop de varredura até o contexto ser cancelado
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick roda uma varredura única; erros são logados e não interrompem o loop
func (s *Scheduler) Tick(ctx context.Context) {
	now := time.Now().UTC()

	expired, err := s.Repo.ExpiredOpenMarkets(ctx, now)
	if err != nil {
		s.Log.Warn("scan expired markets", zap.Error(err))
	}
	for _, id := range expired {
		if err := s.Publ.PublishClose(ctx, jobs.CloseJob{MarketID: id, Reason: "closes_at reached"}); err != nil {
			s.Log.Warn("enqueue auto close", zap.String("marketId", id), zap.Error(err))
			continue
		}
		if s.OnEnqueued != nil {
			s.OnEnqueued(jobs.AutoCloseMarket)
		}
		s.Log.Info("auto close enqueued", zap.String("marketId", id))
	}

	pending, err := s.Repo.ClosedAutomaticMarkets(ctx)
	if err != nil {
		s.Log.Warn("scan closed markets", zap.Error(err))
	}
	for _, id := range pending {
		if err := s.Publ.PublishSettlement(ctx, jobs.SettlementJob{
			MarketID:         id,
			Reason:           "automatic settlement after close",
			SettlementMethod: jobs.MethodAutomatic,
		}); err != nil {
			s.Log.Warn("enqueue settlement", zap.String("marketId", id), zap.Error(err))
			continue
		}
		if s.OnEnqueued != nil {
			s.OnEnqueued(jobs.ProcessMarketSettlement)
		}
		s.Log.Info("automatic settlement enqueued", zap.String("marketId", id))
	}
}
