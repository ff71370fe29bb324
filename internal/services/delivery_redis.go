package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sileme/sileme/internal/models"
)

const defaultPublishTimeout = 3 * time.Second

// RedisDeliverySink publishes events on per-user Redis pub/sub channels.
// A websocket gateway subscribed to those channels relays them to connected
// clients; if nobody is subscribed the event is simply dropped, which is the
// contract.
type RedisDeliverySink struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisDeliverySink(client *redis.Client) *RedisDeliverySink {
	return &RedisDeliverySink{
		client:  client,
		timeout: defaultPublishTimeout,
	}
}

func (sink *RedisDeliverySink) Publish(ctx context.Context, userID uint, event string, payload any) error {
	envelope := DeliveryEvent{
		ID:        uuid.NewString(),
		Event:     event,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode delivery event: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	publishCtx, cancel := context.WithTimeout(ctx, sink.timeout)
	defer cancel()

	if err := sink.client.Publish(publishCtx, UserChannel(userID), body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", UserChannel(userID), err)
	}
	return nil
}

// Supports only claims the realtime channel; push, email and sms transports
// are not implemented by this sink.
func (sink *RedisDeliverySink) Supports(channel string) bool {
	return channel == models.ChannelRealtime
}
