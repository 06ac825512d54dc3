package jobs

import "encoding/json"

// Nomes de job reconhecidos pelos workers.
const (
	ProcessMarketSettlement = "process-market-settlement"
	AutoCloseMarket         = "auto-close-market"
	ProcessNewBet           = "process-new-bet"
)

// SettlementMethod indica como o outcome vencedor é determinado.
type SettlementMethod string

const (
	MethodManual    SettlementMethod = "MANUAL"
	MethodAutomatic SettlementMethod = "AUTOMATIC"
)

// Envelope é a unidade de trabalho publicada nas filas.
// Name seleciona o handler; Data carrega o payload específico do job.
type Envelope struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// Encode serializa um payload dentro de um Envelope pronto para publicar.
func Encode(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Name: name, Data: data})
}

// SettlementJob é o payload de process-market-settlement.
type SettlementJob struct {
	MarketID         string           `json:"marketId"`
	Reason           string           `json:"reason,omitempty"`
	WinningOutcomeID string           `json:"winningOutcomeId,omitempty"`
	SettlementMethod SettlementMethod `json:"settlementMethod,omitempty"`
}

// Method resolve o settlementMethod efetivo: AUTOMATIC quando omitido.
func (j SettlementJob) Method() SettlementMethod {
	if j.SettlementMethod == "" {
		return MethodAutomatic
	}
	return j.SettlementMethod
}

// CloseJob é o payload de auto-close-market.
type CloseJob struct {
	MarketID string `json:"marketId"`
	Reason   string `json:"reason,omitempty"`
}

// NewBetJob é o payload de process-new-bet.
type NewBetJob struct {
	BetID       string `json:"betId"`
	MarketID    string `json:"marketId"`
	OutcomeID   string `json:"outcomeId"`
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amountCents"`
}
