package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

var (
	ErrUnknownJob = errors.New("unrecognized job name")
	ErrMissingBet = errors.New("betId required")
)

// Service processa apostas recém-colocadas
type Service interface {
	ProcessNewBet(ctx context.Context, job jobs.NewBetJob) error
}

// Dispatcher roteia jobs da fila bet-processing.
// Match exato por nome; nome desconhecido falha antes de qualquer chamada ao serviço.
type Dispatcher struct {
	Log *zap.Logger
	Svc Service
}

func New(log *zap.Logger, svc Service) *Dispatcher {
	return &Dispatcher{Log: log, Svc: svc}
}

func (d *Dispatcher) Dispatch(ctx context.Context, env jobs.Envelope) error {
	switch env.Name {
	case jobs.ProcessNewBet:
		return d.processNewBet(ctx, env.Data)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, env.Name)
	}
}

func (d *Dispatcher) processNewBet(ctx context.Context, data json.RawMessage) error {
	var job jobs.NewBetJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("decode new bet job: %w", err)
	}
	if job.BetID == "" {
		return ErrMissingBet
	}

	d.Log.Info("processing new bet",
		zap.String("betId", job.BetID),
		zap.String("marketId", job.MarketID),
		zap.Int64("amount_cents", job.AmountCents),
	)

	if err := d.Svc.ProcessNewBet(ctx, job); err != nil {
		d.Log.Error("new bet processing failed", zap.String("betId", job.BetID), zap.Error(err))
		return err
	}

	d.Log.Info("new bet processed", zap.String("betId", job.BetID))
	return nil
}
