package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore guarda tokens de sessão opacos no Redis
type SessionStore struct {
	Rdb *redis.Client
	TTL time.Duration
}

func NewSessionStore(r *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{Rdb: r, TTL: ttl}
}

func key(token string) string { return "session:" + token }

// Create emite um token novo mapeado para o userID
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.Rdb.Set(ctx, key(token), userID, s.TTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// UserID resolve o token para o userID; "" se expirado/inexistente
func (s *SessionStore) UserID(ctx context.Context, token string) (string, error) {
	v, err := s.Rdb.Get(ctx, key(token)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

// Revoke invalida um token (logout)
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	return s.Rdb.Del(ctx, key(token)).Err()
}
