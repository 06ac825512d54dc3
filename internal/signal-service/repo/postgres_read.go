package repo

import (
	"context"
	"database/sql"

	"github.com/viralfx/viralfx-platform/internal/signal-service/dto"
)

// ReadRepo é a visão somente-leitura de mercados/preços do signal-service
type ReadRepo struct{ DB *sql.DB }

func NewReadRepo(db *sql.DB) *ReadRepo { return &ReadRepo{DB: db} }

// ListMarkets retorna os mercados ativos mais recentes
func (r *ReadRepo) ListMarkets(ctx context.Context) ([]dto.MarketSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, question, category, status, closes_at::text
		FROM markets
		WHERE status IN ('OPEN','CLOSED')
		ORDER BY closes_at ASC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dto.MarketSummary
	for rows.Next() {
		var m dto.MarketSummary
		if err := rows.Scan(&m.MarketID, &m.Question, &m.Category, &m.Status, &m.ClosesAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetPricesByMarket retorna pools e preços implícitos de um mercado
func (r *ReadRepo) GetPricesByMarket(ctx context.Context, marketID string) ([]dto.OutcomePrice, error) {
	var one int
	if err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM markets WHERE id=$1`, marketID).Scan(&one); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, label, pool_cents, implied_price
		FROM outcomes WHERE market_id=$1 ORDER BY label`, marketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dto.OutcomePrice
	for rows.Next() {
		var o dto.OutcomePrice
		if err := rows.Scan(&o.OutcomeID, &o.Label, &o.PoolCents, &o.ImpliedPrice); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
