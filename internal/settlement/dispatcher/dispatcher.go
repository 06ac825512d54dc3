package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/settlement/settler"
	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

var (
	ErrUnknownJob      = errors.New("unrecognized job name")
	ErrMissingMarketID = errors.New("marketId required")
)

// Service é o serviço de liquidação chamado pelos handlers
type Service interface {
	SettleMarket(ctx context.Context, req settler.SettleRequest) (*settler.SettleResult, error)
	CloseMarket(ctx context.Context, marketID, reason string) error
}

// Dispatcher roteia jobs da fila market-settlement para o serviço de liquidação.
// Match exato por nome; nome desconhecido falha antes de qualquer chamada ao serviço.
// Erros do serviço são propagados sem tradução; retry/DLQ é papel do loop do worker.
type Dispatcher struct {
	Log *zap.Logger
	Svc Service
}

func New(log *zap.Logger, svc Service) *Dispatcher {
	return &Dispatcher{Log: log, Svc: svc}
}

func (d *Dispatcher) Dispatch(ctx context.Context, env jobs.Envelope) error {
	switch env.Name {
	case jobs.ProcessMarketSettlement:
		return d.processMarketSettlement(ctx, env.Data)
	case jobs.AutoCloseMarket:
		return d.autoCloseMarket(ctx, env.Data)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, env.Name)
	}
}

func (d *Dispatcher) processMarketSettlement(ctx context.Context, data json.RawMessage) error {
	var job jobs.SettlementJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("decode settlement job: %w", err)
	}
	if job.MarketID == "" {
		return ErrMissingMarketID
	}

	d.Log.Info("processing market settlement",
		zap.String("marketId", job.MarketID),
		zap.String("method", string(job.Method())),
	)

	res, err := d.Svc.SettleMarket(ctx, settler.SettleRequest{
		MarketID:         job.MarketID,
		Reason:           job.Reason,
		WinningOutcomeID: job.WinningOutcomeID,
		Method:           job.Method(),
	})
	if err != nil {
		d.Log.Error("market settlement failed",
			zap.String("marketId", job.MarketID),
			zap.Error(err),
		)
		return err
	}

	d.Log.Info("market settlement done",
		zap.String("marketId", res.MarketID),
		zap.String("status", res.Status),
		zap.String("winningOutcomeId", res.WinningOutcomeID),
	)
	return nil
}

func (d *Dispatcher) autoCloseMarket(ctx context.Context, data json.RawMessage) error {
	var job jobs.CloseJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("decode close job: %w", err)
	}
	if job.MarketID == "" {
		return ErrMissingMarketID
	}

	d.Log.Info("processing auto close", zap.String("marketId", job.MarketID))

	if err := d.Svc.CloseMarket(ctx, job.MarketID, job.Reason); err != nil {
		d.Log.Error("auto close failed", zap.String("marketId", job.MarketID), zap.Error(err))
		return err
	}

	d.Log.Info("auto close done", zap.String("marketId", job.MarketID))
	return nil
}
