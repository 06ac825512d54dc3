package events

import "time"

// OutcomePrice carrega o preço implícito corrente de um outcome.
type OutcomePrice struct {
	OutcomeID    string  `json:"outcomeId"`
	Label        string  `json:"label"`
	PoolCents    int64   `json:"poolCents"`
	ImpliedPrice float64 `json:"impliedPrice"`
}

// Evento publicado no canal de broadcast após cada bet aceito.
type PriceUpdate struct {
	MarketID  string         `json:"marketId"`
	Prices    []OutcomePrice `json:"prices"`
	Version   int64          `json:"version"` // incrementado a cada atualização
	UpdatedAt time.Time      `json:"updatedAt"`
	Source    string         `json:"source"` // "bet-processing-worker"
}
