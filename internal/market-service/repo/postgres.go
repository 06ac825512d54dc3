package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrMarketNotOpen  = errors.New("market not open")
	ErrUnknownOutcome = errors.New("outcome does not belong to market")
)

// Postgres implementa operações de persistência de mercados e apostas
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de mercados
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreateMarket insere um mercado OPEN com seus outcomes em uma única transação
// Preço implícito inicial é uniforme (1/n)
func (p *Postgres) CreateMarket(ctx context.Context, m *Market, labels []string) (string, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO markets (id,question,category,status,settlement_method,closes_at)
		VALUES ($1,$2,$3,'OPEN',$4,$5)`,
		id, m.Question, m.Category, m.SettlementMethod, m.ClosesAt,
	)
	if err != nil {
		return "", err
	}

	initial := 1.0 / float64(len(labels))
	for _, label := range labels {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO outcomes (id,market_id,label,pool_cents,implied_price)
			VALUES ($1,$2,$3,0,$4)`,
			uuid.NewString(), id, label, initial,
		); err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListMarkets retorna mercados filtrados por status ("" = todos)
func (p *Postgres) ListMarkets(ctx context.Context, status string) ([]Market, error) {
	q := `SELECT id,question,category,status,settlement_method,closes_at,created_at FROM markets`
	args := []any{}
	if status != "" {
		q += ` WHERE status=$1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Market
	for rows.Next() {
		var m Market
		if err := rows.Scan(&m.ID, &m.Question, &m.Category, &m.Status, &m.SettlementMethod, &m.ClosesAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMarket retorna um mercado e seus outcomes
func (p *Postgres) GetMarket(ctx context.Context, id string) (*Market, error) {
	var m Market
	var winner sql.NullString
	err := p.db.QueryRowContext(ctx, `
		SELECT id,question,category,status,settlement_method,COALESCE(winning_outcome_id,''),closes_at,created_at
		FROM markets WHERE id=$1`, id).
		Scan(&m.ID, &m.Question, &m.Category, &m.Status, &m.SettlementMethod, &winner, &m.ClosesAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.WinningOutcomeID = winner.String

	rows, err := p.db.QueryContext(ctx, `
		SELECT id,market_id,label,pool_cents,implied_price,is_winner
		FROM outcomes WHERE market_id=$1 ORDER BY label`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.ID, &o.MarketID, &o.Label, &o.PoolCents, &o.ImpliedPrice, &o.IsWinner); err != nil {
			return nil, err
		}
		m.Outcomes = append(m.Outcomes, o)
	}
	return &m, rows.Err()
}

// CreatePendingBet insere uma nova aposta com status PENDING
// Valida que o mercado está OPEN e que o outcome pertence a ele
func (p *Postgres) CreatePendingBet(ctx context.Context, b *Bet) (string, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var status string
	if err = tx.QueryRowContext(ctx, `SELECT status FROM markets WHERE id=$1`, b.MarketID).Scan(&status); err != nil {
		return "", err
	}
	if status != MarketOpen {
		return "", ErrMarketNotOpen
	}

	var belongs int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM outcomes WHERE id=$1 AND market_id=$2`, b.OutcomeID, b.MarketID).Scan(&belongs)
	if err == sql.ErrNoRows {
		return "", ErrUnknownOutcome
	} else if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bets (id,user_id,market_id,outcome_id,amount_cents,price,status)
		VALUES ($1,$2,$3,$4,$5,$6,'PENDING')`,
		id, b.UserID, b.MarketID, b.OutcomeID, b.AmountCents, b.Price,
	); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetBetStatus retorna o status atual de uma aposta pelo betID
func (p *Postgres) GetBetStatus(ctx context.Context, betID string) (string, error) {
	var s string
	err := p.db.QueryRowContext(ctx, `SELECT status FROM bets WHERE id=$1`, betID).Scan(&s)
	return s, err
}
