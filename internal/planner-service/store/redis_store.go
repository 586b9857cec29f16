package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/master-bet-engine/internal/planner"
)

var ErrNotFound = errors.New("plan not found")

// RedisStore guarda planos rascunho no Redis com TTL: as ofertas são
// snapshot e envelhecem; um rascunho que expira nunca vira commit contra
// um mercado morto. Planos terminais ficam pelo mesmo TTL pra leitura.
type RedisStore struct {
	R   *redis.Client
	TTL time.Duration
}

func NewRedisStore(r *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{R: r, TTL: ttl}
}

func key(planID string) string { return "plan:" + planID }

// Save grava um plano novo com TTL cheio
func (s *RedisStore) Save(ctx context.Context, p *planner.ExecutionPlan) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, key(p.ID), b, s.TTL).Err()
}

// Get carrega um plano pelo id
func (s *RedisStore) Get(ctx context.Context, planID string) (*planner.ExecutionPlan, error) {
	b, err := s.R.Get(ctx, key(planID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p planner.ExecutionPlan
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update regrava um plano existente preservando o TTL restante
func (s *RedisStore) Update(ctx context.Context, p *planner.ExecutionPlan) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, key(p.ID), b, redis.KeepTTL).Err()
}

// Delete descarta um plano (cancelamento sem rastro)
func (s *RedisStore) Delete(ctx context.Context, planID string) error {
	return s.R.Del(ctx, key(planID)).Err()
}
