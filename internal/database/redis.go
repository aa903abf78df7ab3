package database

import (
	"context"
	"fmt"
	"time"

	"github.com/hypernova-labs/fattura-service/internal/config"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "fattura:lock:"

// releaseLockScript deletes the key only while it still holds our token
var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Redis wraps the Redis client
type Redis struct {
	*redis.Client
}

// ConnectRedis opens the Redis client and verifies it
func ConnectRedis(ctx context.Context, cfg *config.Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging Redis: %w", err)
	}

	return &Redis{client}, nil
}

// NewRedis wraps an existing client
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client}
}

// HealthCheck pings Redis
func (r *Redis) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.Ping(ctx).Err()
}

// TryLock sets the lock key to token if it is free. The key expires after ttl
// so a crashed holder cannot block the invoice forever.
func (r *Redis) TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := r.SetNX(ctx, lockKeyPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("error acquiring redis lock %s: %w", key, err)
	}
	return ok, nil
}

// Unlock releases the lock if token still owns it
func (r *Redis) Unlock(ctx context.Context, key, token string) error {
	if err := releaseLockScript.Run(ctx, r.Client, []string{lockKeyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("error releasing redis lock %s: %w", key, err)
	}
	return nil
}
