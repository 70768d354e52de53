package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	redis_models "Courtside/models/redis"
	"Courtside/services/notify"
	redis_utils "Courtside/services/redis/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ notify.Bus = (*RedisClient)(nil)

func connect(t *testing.T) *RedisClient {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	rc, err := InitRedis(url, 0)
	require.NoError(t, err)
	t.Cleanup(func() { CloseRedis(rc) })
	return rc
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient("not a url", 0)
	assert.Error(t, err)
}

func TestRedisOptions(t *testing.T) {
	opt, err := redisOptions("redis.internal:6380", 3)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", opt.Addr)
	assert.Equal(t, 3, opt.DB)

	opt, err = redisOptions("localhost:6379", 0)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opt.Addr)

	opt, err = redisOptions("redis://:secret@cache:6379/2", 0)
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)

	opt, err = redisOptions("rediss://cache:6380", 0)
	require.NoError(t, err)
	assert.NotNil(t, opt.TLSConfig)

	_, err = redisOptions("http://cache:6379", 0)
	assert.Error(t, err)

	_, err = redisOptions("cache", 0)
	assert.Error(t, err)
}

func TestRedisPublishSubscribe(t *testing.T) {
	rc := connect(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const gameID = 900001
	require.NoError(t, rc.CleanupKeys(ctx, []string{redis_utils.FormatRecentEventsKey(gameID)}))

	events, err := rc.Subscribe(ctx)
	require.NoError(t, err)

	sent := redis_models.GameEvent{ID: "evt-1", Name: redis_models.EventPlayerJoined, GameID: gameID, PlayerID: 3}
	require.NoError(t, rc.Publish(ctx, sent))

	for {
		select {
		case got := <-events:
			if got.GameID != gameID {
				continue
			}
			assert.Equal(t, sent.ID, got.ID)
			assert.Equal(t, sent.Name, got.Name)
			return
		case <-ctx.Done():
			t.Fatal("event not received")
		}
	}
}

func TestRedisRecentIsCapped(t *testing.T) {
	rc := connect(t)
	ctx := context.Background()

	const gameID = 900002
	key := redis_utils.FormatRecentEventsKey(gameID)
	require.NoError(t, rc.CleanupKeys(ctx, []string{key}))
	defer rc.CleanupKeys(ctx, []string{key})

	for i := 0; i < notify.RecentLimit+10; i++ {
		require.NoError(t, rc.Publish(ctx, redis_models.GameEvent{ID: fmt.Sprintf("evt-%d", i), GameID: gameID}))
	}

	recent, err := rc.Recent(ctx, gameID, 0)
	require.NoError(t, err)
	require.Len(t, recent, notify.RecentLimit)
	assert.Equal(t, fmt.Sprintf("evt-%d", notify.RecentLimit+9), recent[0].ID)

	ttl, err := rc.client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0)
}
