package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	DB "Backend-Feedback-Portal/src/database"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist holds access tokens revoked at logout until they expire.
type TokenBlacklist interface {
	Blacklist(ctx context.Context, token string, expiresIn time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// RedisBlacklist uses the shared Redis client; a nil client means dev mode.
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist() *RedisBlacklist {
	return &RedisBlacklist{client: DB.RedisClient}
}

// Blacklist returns nil if Redis is not available (development mode)
func (b *RedisBlacklist) Blacklist(ctx context.Context, token string, expiresIn time.Duration) error {
	if b.client == nil {
		log.Println("⚠️ redis client not initialized, skip blacklist")
		return nil
	}
	if expiresIn <= 0 {
		return nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	if err := b.client.Set(ctx, key, "1", expiresIn).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %v", err)
	}
	return nil
}

// IsBlacklisted returns false if Redis is not available (development mode - allow all tokens)
func (b *RedisBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if b.client == nil {
		return false, nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	_, err := b.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil // Token ไม่อยู่ใน blacklist
		}
		return false, fmt.Errorf("failed to check blacklist: %v", err)
	}
	return true, nil
}
