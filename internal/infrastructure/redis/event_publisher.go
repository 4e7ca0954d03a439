package redis

import (
	"context"
	"encoding/json"

	"live-bidding/internal/domain"

	"github.com/go-redis/redis/v8"
)

const eventsChannel = "bidding_events"

// RedisEventPublisher pushes bid lifecycle events onto a pub/sub channel for
// external consumers (analytics, audit). Publishing is fire-and-forget from
// the auction state machine's perspective.
type RedisEventPublisher struct {
	client *redis.Client
}

func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{client: client}
}

func (r *RedisEventPublisher) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, eventsChannel, payload).Err()
}
