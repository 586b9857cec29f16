package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const ChannelOfferBroadcast = "offer_updates_broadcast"

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// Payload padrão pros consumidores do broadcast (dashboards, alertas)
type BroadcastUpdate struct {
	EventID string      `json:"eventId"`
	Service string      `json:"service"`
	Payload interface{} `json:"payload"`
}
