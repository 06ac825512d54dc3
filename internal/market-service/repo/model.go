package repo

import "time"

// Status de mercado e de aposta persistidos no Postgres.
const (
	MarketOpen    = "OPEN"
	MarketClosed  = "CLOSED"
	MarketSettled = "SETTLED"
	MarketVoided  = "VOIDED"

	BetPending  = "PENDING"
	BetAccepted = "ACCEPTED"
	BetRejected = "REJECTED"
	BetWon      = "WON"
	BetLost     = "LOST"
	BetRefunded = "REFUNDED"
)

// Market é um mercado de previsão sobre um sinal (ex: "BTC fecha acima de 100k?").
type Market struct {
	ID               string    `json:"id"`
	Question         string    `json:"question"`
	Category         string    `json:"category,omitempty"`
	Status           string    `json:"status"`
	SettlementMethod string    `json:"settlementMethod"`
	WinningOutcomeID string    `json:"winningOutcomeId,omitempty"`
	SettleReason     string    `json:"settleReason,omitempty"`
	ClosesAt         time.Time `json:"closesAt"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Outcomes         []Outcome `json:"outcomes,omitempty"`
}

// Outcome é um resultado apostável de um mercado.
type Outcome struct {
	ID           string  `json:"id"`
	MarketID     string  `json:"marketId"`
	Label        string  `json:"label"`
	PoolCents    int64   `json:"pool_cents"`
	ImpliedPrice float64 `json:"impliedPrice"`
	IsWinner     bool    `json:"isWinner,omitempty"`
}

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	MarketID    string    `json:"marketId"`
	OutcomeID   string    `json:"outcomeId"`
	AmountCents int64     `json:"amount_cents"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
