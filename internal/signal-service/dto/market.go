package dto

// MarketSummary resume um mercado para listagem
type MarketSummary struct {
	MarketID string `json:"marketId"`
	Question string `json:"question"`
	Category string `json:"category"`
	Status   string `json:"status"`
	ClosesAt string `json:"closesAt"`
}

// OutcomePrice representa o preço implícito corrente de um outcome
type OutcomePrice struct {
	OutcomeID    string  `json:"outcomeId"`
	Label        string  `json:"label"`
	PoolCents    int64   `json:"poolCents"`
	ImpliedPrice float64 `json:"impliedPrice"`
}
