package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRole names what a connection is used for. Pub/sub subscriptions hold
// their connection, so the hub never shares a client with the session store.
type RedisRole string

const (
	RedisSessions RedisRole = "sessions"
	RedisEvents   RedisRole = "events"
)

// ConnectRedis opens one client for role and pings it.
func ConnectRedis(ctx context.Context, redisURL string, role RedisRole) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis (%s): %w", role, err)
	}

	return client, nil
}
