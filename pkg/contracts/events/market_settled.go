package events

import "time"

// Evento emitido pelo settlement-worker após liquidar um mercado.
type MarketSettled struct {
	MarketID         string    `json:"marketId"`
	WinningOutcomeID string    `json:"winningOutcomeId,omitempty"`
	Method           string    `json:"method"` // "MANUAL" | "AUTOMATIC"
	Status           string    `json:"status"` // "SETTLED" | "VOIDED"
	TotalPoolCents   int64     `json:"totalPoolCents"`
	PaidOutCents     int64     `json:"paidOutCents"`
	RakeCents        int64     `json:"rakeCents"`
	Reason           string    `json:"reason,omitempty"`
	Ts               time.Time `json:"ts"`
}
