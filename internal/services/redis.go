package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const statusUpdateChannel = "request:status:updates"

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// CacheRequestStatus stores the current status for a reference number so the
// public tracking endpoint can answer without hitting Postgres.
func CacheRequestStatus(ctx context.Context, reference, status string) error {
	key := fmt.Sprintf("request:status:%s", reference)
	return RedisClient.Set(ctx, key, status, time.Hour).Err()
}

// GetCachedRequestStatus retrieves a cached status for a reference number.
func GetCachedRequestStatus(ctx context.Context, reference string) (string, error) {
	key := fmt.Sprintf("request:status:%s", reference)
	return RedisClient.Get(ctx, key).Result()
}

// InvalidateRequestStatus drops the cached status after a transition.
func InvalidateRequestStatus(ctx context.Context, reference string) error {
	key := fmt.Sprintf("request:status:%s", reference)
	return RedisClient.Del(ctx, key).Err()
}

// StatusUpdate is the event published on every booking/quote transition.
type StatusUpdate struct {
	Kind      string `json:"kind"` // "booking" or "quote"
	Reference string `json:"reference"`
	Status    string `json:"status"`
	ChangedBy string `json:"changedBy"`
	Timestamp int64  `json:"timestamp"`
}

// PublishStatusUpdate publishes a status transition to Redis pub/sub so other
// instances can fan it out to their connected admin dashboards.
func PublishStatusUpdate(ctx context.Context, update StatusUpdate) error {
	update.Timestamp = time.Now().Unix()
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return RedisClient.Publish(ctx, statusUpdateChannel, data).Err()
}

// SubscribeStatusUpdates subscribes to the status update channel and forwards
// raw payloads to the given function until the context is cancelled.
func SubscribeStatusUpdates(ctx context.Context, handle func([]byte)) {
	sub := RedisClient.Subscribe(ctx, statusUpdateChannel)
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handle([]byte(msg.Payload))
			}
		}
	}()
}
