package dto

import "time"

type CreateMarketRequest struct {
	Question         string    `json:"question"`
	Category         string    `json:"category"`          // ex: "crypto", "social"
	SettlementMethod string    `json:"settlementMethod"`  // MANUAL | AUTOMATIC
	ClosesAt         time.Time `json:"closesAt"`
	Outcomes         []string  `json:"outcomes"` // mínimo 2 labels
}

type PlaceBetRequest struct {
	UserID      string  `json:"userId"`
	MarketID    string  `json:"marketId"`
	OutcomeID   string  `json:"outcomeId"`
	AmountCents int64   `json:"amount_cents"`
	Price       float64 `json:"price"` // preço implícito que o cliente viu
}

type SettleMarketRequest struct {
	WinningOutcomeID string `json:"winningOutcomeId,omitempty"`
	SettlementMethod string `json:"settlementMethod,omitempty"` // default AUTOMATIC
	Reason           string `json:"reason,omitempty"`
}

type CloseMarketRequest struct {
	Reason string `json:"reason,omitempty"`
}
