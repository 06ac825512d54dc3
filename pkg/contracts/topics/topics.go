package topics

const (
	// Filas de jobs dos workers
	MarketSettlement = "market-settlement"
	BetProcessing    = "bet-processing"

	// DLQs
	MarketSettlementDLQ = "market-settlement-dlq"
	BetProcessingDLQ    = "bet-processing-dlq"

	// Eventos
	MarketSettled = "market_settled"
)
