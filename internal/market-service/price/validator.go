package price

import (
	"context"
	"encoding/json"
	"math"

	"github.com/redis/go-redis/v9"

	"github.com/viralfx/viralfx-platform/pkg/contracts/events"
)

// Tolerância de drift entre o preço visto pelo cliente e o preço corrente
const DriftTolerance = 0.02

type Validator struct {
	Rdb *redis.Client
}

func NewValidator(r *redis.Client) *Validator { return &Validator{Rdb: r} }

// Espera chave "prices:current:{marketID}" => JSON de events.PriceUpdate
func (v *Validator) CurrentPrice(ctx context.Context, marketID, outcomeID string) (float64, error) {
	b, err := v.Rdb.Get(ctx, "prices:current:"+marketID).Bytes()
	if err != nil {
		return 0, err
	}
	var upd events.PriceUpdate
	if err := json.Unmarshal(b, &upd); err != nil {
		return 0, err
	}
	for _, p := range upd.Prices {
		if p.OutcomeID == outcomeID {
			return p.ImpliedPrice, nil
		}
	}
	return 0, redis.Nil
}

// Drifted compara o preço do cliente com o corrente dentro da tolerância.
// Compara em basis points pra evitar ruído de ponto flutuante no limite
// (diferença exatamente na tolerância não é drift).
func Drifted(clientPrice, currentPrice float64) bool {
	diffBps := int64(math.Round(math.Abs(clientPrice-currentPrice) * 10000))
	return diffBps > int64(DriftTolerance*10000)
}
