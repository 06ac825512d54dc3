package scheduler

import (
	"context"
	"database/sql"
	"time"
)

// Postgres localiza mercados elegíveis para fechamento/liquidação automáticos
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// ExpiredOpenMarkets retorna mercados OPEN cujo closes_at já passou
func (p *Postgres) ExpiredOpenMarkets(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id FROM markets WHERE status='OPEN' AND closes_at <= $1 LIMIT 200`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ClosedAutomaticMarkets retorna mercados CLOSED com liquidação AUTOMATIC pendente
func (p *Postgres) ClosedAutomaticMarkets(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id FROM markets WHERE status='CLOSED' AND settlement_method='AUTOMATIC' LIMIT 200`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
