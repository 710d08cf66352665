package rdx

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Init connects to Redis. The cache is best-effort: callers must tolerate a
// miss or an error and fall back to Mongo.
func Init(ctx context.Context) error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := Conn.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func Close() error {
	if Conn == nil {
		return nil
	}
	return Conn.Close()
}

func RdxGet(ctx context.Context, key string) (string, error) {
	return Conn.Get(ctx, key).Result()
}

func RdxSet(ctx context.Context, key, value string, ttl time.Duration) error {
	return Conn.Set(ctx, key, value, ttl).Err()
}

func RdxDel(ctx context.Context, key string) error {
	return Conn.Del(ctx, key).Err()
}

func RdxHget(ctx context.Context, hash, field string) (string, error) {
	return Conn.HGet(ctx, hash, field).Result()
}

func RdxHset(ctx context.Context, hash, field, value string) error {
	return Conn.HSet(ctx, hash, field, value).Err()
}

func RdxHdel(ctx context.Context, hash, field string) error {
	return Conn.HDel(ctx, hash, field).Err()
}
