package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/viralfx/viralfx-platform/internal/settlement/settler"
)

var ErrMarketNotFound = errors.New("market not found")

// Postgres implementa settler.Repo sobre o schema de mercados/apostas
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// LoadSnapshot lê mercado, pools e apostas aceitas em uma visão consistente
func (p *Postgres) LoadSnapshot(ctx context.Context, marketID string) (*settler.Snapshot, error) {
	snap := &settler.Snapshot{MarketID: marketID}

	err := p.db.QueryRowContext(ctx, `SELECT status FROM markets WHERE id=$1`, marketID).Scan(&snap.Status)
	if err == sql.ErrNoRows {
		return nil, ErrMarketNotFound
	} else if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, label, pool_cents FROM outcomes WHERE market_id=$1 ORDER BY label`, marketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var o settler.OutcomePool
		if err := rows.Scan(&o.OutcomeID, &o.Label, &o.PoolCents); err != nil {
			return nil, err
		}
		snap.Outcomes = append(snap.Outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	brows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, outcome_id, amount_cents FROM bets
		WHERE market_id=$1 AND status='ACCEPTED'`, marketID)
	if err != nil {
		return nil, err
	}
	defer brows.Close()
	for brows.Next() {
		var b settler.BetStake
		if err := brows.Scan(&b.BetID, &b.UserID, &b.OutcomeID, &b.AmountCents); err != nil {
			return nil, err
		}
		snap.Bets = append(snap.Bets, b)
	}
	return snap, brows.Err()
}

// MarkSettled grava o desfecho do mercado em uma única transação:
// mercado SETTLED, outcome vencedor, apostas WON/LOST, histórico e auditoria
func (p *Postgres) MarkSettled(ctx context.Context, res *settler.SettleResult, payouts []settler.Payout, reason string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		UPDATE markets SET status='SETTLED', winning_outcome_id=$1, settle_reason=$2, updated_at=NOW()
		WHERE id=$3`, res.WinningOutcomeID, reason, res.MarketID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE outcomes SET is_winner = (id=$1) WHERE market_id=$2`,
		res.WinningOutcomeID, res.MarketID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE bets SET status='WON', updated_at=NOW()
		WHERE market_id=$1 AND status='ACCEPTED' AND outcome_id=$2`,
		res.MarketID, res.WinningOutcomeID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		UPDATE bets SET status='LOST', updated_at=NOW()
		WHERE market_id=$1 AND status='ACCEPTED' AND outcome_id<>$2`,
		res.MarketID, res.WinningOutcomeID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bet_transactions (bet_id, old_status, new_status, reason, created_at)
		SELECT id, 'ACCEPTED', status, $2, NOW() FROM bets WHERE market_id=$1 AND status IN ('WON','LOST')`,
		res.MarketID, reason); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO market_settlements
		  (market_id, winning_outcome_id, method, total_pool_cents, paid_out_cents, rake_cents, reason, settled_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`,
		res.MarketID, res.WinningOutcomeID, string(res.Method),
		res.TotalPoolCents, res.PaidOutCents, res.RakeCents, reason); err != nil {
		return err
	}

	return tx.Commit()
}

// MarkVoided anula o mercado e marca as apostas aceitas como REFUNDED
func (p *Postgres) MarkVoided(ctx context.Context, marketID, reason string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		UPDATE markets SET status='VOIDED', settle_reason=$1, updated_at=NOW() WHERE id=$2`,
		reason, marketID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bet_transactions (bet_id, old_status, new_status, reason, created_at)
		SELECT id, status, 'REFUNDED', $2, NOW() FROM bets WHERE market_id=$1 AND status='ACCEPTED'`,
		marketID, reason); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE bets SET status='REFUNDED', updated_at=NOW()
		WHERE market_id=$1 AND status='ACCEPTED'`, marketID); err != nil {
		return err
	}

	return tx.Commit()
}

// CloseMarket fecha um mercado OPEN; mercado já fechado é no-op
func (p *Postgres) CloseMarket(ctx context.Context, marketID, reason string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE markets SET status='CLOSED', settle_reason=$1, updated_at=NOW()
		WHERE id=$2 AND status='OPEN'`, reason, marketID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// já fechado/liquidado ou inexistente; valida existência pra diferenciar
		var one int
		if err := p.db.QueryRowContext(ctx, `SELECT 1 FROM markets WHERE id=$1`, marketID).Scan(&one); err == sql.ErrNoRows {
			return ErrMarketNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
