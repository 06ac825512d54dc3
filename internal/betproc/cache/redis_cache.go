package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/viralfx/viralfx-platform/pkg/contracts/events"
)

// RedisCache encapsula o cache de preços correntes por mercado
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis para os preços correntes de um mercado
func key(marketID string) string { return "prices:current:" + marketID }

// SetCurrent armazena os preços correntes de um mercado no Redis com TTL definido
func (r *RedisCache) SetCurrent(ctx context.Context, u events.PriceUpdate) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(u.MarketID), b, r.TTL).Err()
}
