package claim

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "honeypot:callback:"

// RedisClaimer records callback dispatch in Redis so that replicas sharing
// session ids report each session once.
type RedisClaimer struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClaimer connects to url (redis://...) and checks the connection.
func NewRedisClaimer(ctx context.Context, url string, ttl time.Duration) (*RedisClaimer, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisClaimer{rdb: rdb, ttl: ttl}, nil
}

// Claim returns true for the first caller per session id within the TTL.
func (c *RedisClaimer) Claim(ctx context.Context, sessionID string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, Key(sessionID), time.Now().UTC().Format(time.RFC3339), c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", sessionID, err)
	}
	return ok, nil
}

func (c *RedisClaimer) Close() error {
	return c.rdb.Close()
}

// Key is the Redis key guarding a session's callback.
func Key(sessionID string) string {
	return keyPrefix + sessionID
}
