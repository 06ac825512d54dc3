package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/viralfx/viralfx-platform/internal/betproc/pricing"
	"github.com/viralfx/viralfx-platform/pkg/contracts/events"
)

var (
	ErrBetNotFound      = errors.New("bet not found")
	ErrAlreadyProcessed = errors.New("bet already processed")
	ErrMarketNotOpen    = errors.New("market not open")
)

// Postgres aplica o efeito de uma aposta aceita: status, pool e preços
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// AcceptBet efetiva uma aposta PENDING em uma transação:
// bet ACCEPTED, pool do outcome incrementado, preços implícitos do mercado
// recalculados e versão de preço avançada. Retorna os preços correntes.
func (p *Postgres) AcceptBet(ctx context.Context, betID string) ([]events.OutcomePrice, int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var status, marketID, outcomeID string
	var amount int64
	err = tx.QueryRowContext(ctx, `
		SELECT status, market_id, outcome_id, amount_cents FROM bets WHERE id=$1 FOR UPDATE`,
		betID).Scan(&status, &marketID, &outcomeID, &amount)
	if err == sql.ErrNoRows {
		return nil, 0, ErrBetNotFound
	} else if err != nil {
		return nil, 0, err
	}
	if status != "PENDING" {
		return nil, 0, ErrAlreadyProcessed
	}

	// Tranca o mercado junto: aposta só entra no pool enquanto OPEN,
	// senão a liquidação poderia marcar como WON uma aposta fora do snapshot
	var marketStatus string
	if err = tx.QueryRowContext(ctx, `
		SELECT status FROM markets WHERE id=$1 FOR UPDATE`, marketID).Scan(&marketStatus); err != nil {
		return nil, 0, err
	}
	if marketStatus != "OPEN" {
		return nil, 0, ErrMarketNotOpen
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE bets SET status='ACCEPTED', updated_at=NOW() WHERE id=$1`, betID); err != nil {
		return nil, 0, err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bet_transactions (bet_id, old_status, new_status, reason, created_at)
		VALUES ($1,'PENDING','ACCEPTED','',NOW())`, betID); err != nil {
		return nil, 0, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE outcomes SET pool_cents = pool_cents + $1 WHERE id=$2`, amount, outcomeID); err != nil {
		return nil, 0, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, label, pool_cents FROM outcomes WHERE market_id=$1 ORDER BY label`, marketID)
	if err != nil {
		return nil, 0, err
	}
	var prices []events.OutcomePrice
	var pools []int64
	for rows.Next() {
		var o events.OutcomePrice
		if err := rows.Scan(&o.OutcomeID, &o.Label, &o.PoolCents); err != nil {
			rows.Close()
			return nil, 0, err
		}
		prices = append(prices, o)
		pools = append(pools, o.PoolCents)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	implied := pricing.ComputeImplied(pools)
	for i := range prices {
		prices[i].ImpliedPrice = implied[i]
		if _, err = tx.ExecContext(ctx, `
			UPDATE outcomes SET implied_price=$1 WHERE id=$2`, implied[i], prices[i].OutcomeID); err != nil {
			return nil, 0, err
		}
	}

	var version int64
	if err = tx.QueryRowContext(ctx, `
		UPDATE markets SET price_version = price_version + 1, updated_at=NOW()
		WHERE id=$1 RETURNING price_version`, marketID).Scan(&version); err != nil {
		return nil, 0, err
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, err
	}
	return prices, version, nil
}

// RejectBet marca uma aposta PENDING como REJECTED (falha no commit da reserva)
func (p *Postgres) RejectBet(ctx context.Context, betID, reason string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE bets SET status='REJECTED', updated_at=NOW() WHERE id=$1 AND status='PENDING'`, betID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil // já tratado
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bet_transactions (bet_id, old_status, new_status, reason, created_at)
		VALUES ($1,'PENDING','REJECTED',$2,NOW())`, betID, reason); err != nil {
		return err
	}
	return tx.Commit()
}
