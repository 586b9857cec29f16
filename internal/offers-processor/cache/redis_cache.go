package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/master-bet-engine/internal/planner-service/offers"
	"github.com/radieske/master-bet-engine/pkg/contracts/events"
)

// RedisCache mantém o snapshot de ofertas que o planner lê: um hash por
// seleção, um campo por book. O TTL renova a cada atualização; seleção
// sem feed some do cache e o planner cai pro Postgres.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// SetCurrent grava a oferta corrente de um book no hash da seleção
func (r *RedisCache) SetCurrent(ctx context.Context, e events.OfferUpdate) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := offers.HashKey(e.EventID, e.Market, e.Selection)

	pipe := r.Client.TxPipeline()
	pipe.HSet(ctx, key, e.Service, b)
	pipe.Expire(ctx, key, r.TTL)
	_, err = pipe.Exec(ctx)
	return err
}
