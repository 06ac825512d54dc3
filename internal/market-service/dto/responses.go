package dto

type CreateMarketResponse struct {
	MarketID string `json:"marketId"`
	Status   string `json:"status"` // OPEN
}

type PlaceBetResponse struct {
	BetID   string `json:"betId"`
	Status  string `json:"status"` // PENDING
	Message string `json:"message,omitempty"`
}

type BetStatusResponse struct {
	BetID  string `json:"betId"`
	Status string `json:"status"`
}

type EnqueuedResponse struct {
	MarketID string `json:"marketId"`
	Job      string `json:"job"`
	Status   string `json:"status"` // ENQUEUED
}
