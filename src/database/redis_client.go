package database

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client
var RedisURI string

// InitRedis connects when REDIS_URI is set; without it the app runs in dev mode
// (no blacklist, notification fan-out runs inline).
func InitRedis(uri string) {
	if uri == "" {
		log.Println("⚠️ REDIS_URI not set. Running without Redis.")
		return
	}

	opts := &redis.Options{Addr: uri} // เช่น localhost:6379
	if strings.Contains(uri, "://") {
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			log.Println("⚠️ Invalid REDIS_URI, continuing without Redis:", err)
			return
		}
		opts = parsed
	}

	c := redis.NewClient(opts)
	if _, err := c.Ping(context.Background()).Result(); err != nil {
		log.Println("⚠️ Failed to connect Redis, continuing without it:", err)
		_ = c.Close()
		return
	}

	RedisClient = c
	RedisURI = uri
	log.Println("✅ Redis connected successfully")
}
