package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	redis_models "Courtside/models/redis"
	"Courtside/services/notify"
	redis_utils "Courtside/services/redis/utils"

	"github.com/redis/go-redis/v9"
)

// recentTTL is how long a game's event history survives without new events.
const recentTTL = 24 * time.Hour

// RedisClient is the Redis-backed game event bus
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client instance. Addr is either a
// plain "host:port" or a redis:// (rediss:// for TLS) URL.
func NewRedisClient(Addr string, DB int) (*RedisClient, error) {
	opt, err := redisOptions(Addr, DB)
	if err != nil {
		return nil, err
	}
	return &RedisClient{client: redis.NewClient(opt)}, nil
}

// redisOptions builds the client options. A URL carries its own database
// number, so DB only applies to plain addresses.
func redisOptions(addr string, db int) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("error parsing Redis URL: %w", err)
		}
		return opt, nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("error parsing Redis address %q: %w", addr, err)
	}
	return &redis.Options{Addr: addr, DB: db}, nil
}

// Publish sends an event to its game channel and records it in the game's
// recent-events list.
// Channel format: "game:{id}:events"
// List format: "game:{id}:recent", newest first, TTL: 24 hours
func (rc *RedisClient) Publish(ctx context.Context, event redis_models.GameEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	channel := redis_utils.FormatGameEventsChannel(event.GameID)
	recentKey := redis_utils.FormatRecentEventsKey(event.GameID)
	_, err = rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, channel, data)
		pipe.LPush(ctx, recentKey, data)
		pipe.LTrim(ctx, recentKey, 0, notify.RecentLimit-1)
		pipe.Expire(ctx, recentKey, recentTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error publishing event %s: %w", event.ID, err)
	}
	return nil
}

// Subscribe listens on every game channel until ctx is done.
func (rc *RedisClient) Subscribe(ctx context.Context) (<-chan redis_models.GameEvent, error) {
	pubsub := rc.client.PSubscribe(ctx, redis_utils.FormatGameEventsPattern())
	// Wait for the subscription confirmation so no event published after
	// this call returns is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("error subscribing to game events: %w", err)
	}

	out := make(chan redis_models.GameEvent, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event redis_models.GameEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("[REDIS-ERROR] Error decoding event on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Recent returns up to limit events of a game, newest first.
func (rc *RedisClient) Recent(ctx context.Context, gameID uint, limit int) ([]redis_models.GameEvent, error) {
	if limit <= 0 || limit > notify.RecentLimit {
		limit = notify.RecentLimit
	}
	key := redis_utils.FormatRecentEventsKey(gameID)
	raw, err := rc.client.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting recent events: %w", err)
	}

	events := make([]redis_models.GameEvent, 0, len(raw))
	for _, item := range raw {
		var event redis_models.GameEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			log.Printf("[REDIS-ERROR] Skipping undecodable event in %s: %v", key, err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
