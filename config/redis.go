package config

import (
	"log"

	"Courtside/services/redis"
)

// ConnectRedis connects the event bus client. An empty URL means Redis is
// not configured and nil is returned.
func ConnectRedis(redisURL string) (*redis.RedisClient, error) {
	if redisURL == "" {
		return nil, nil
	}
	redisClient, err := redis.InitRedis(redisURL, 0)
	if err != nil {
		log.Printf("Error connecting to Redis: %v", err)
		return nil, err
	}
	log.Println("Redis connection established")
	return redisClient, nil
}
