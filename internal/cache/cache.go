package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key holds no value.
var ErrMiss = errors.New("cache: key not found")

// Store is a key-value store with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Cache struct {
	rc *redis.Client
}

func New(rc *redis.Client) *Cache {
	return &Cache{rc}
}

// Dial connects to redis at addr and checks the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rc.Ping(ctx).Err(); err != nil {
		rc.Close()
		return nil, err
	}

	return rc, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	bs, err := c.rc.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return bs, err
}

// Set stores value under key for ttl (SETEX).
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rc.SetEx(ctx, key, value, ttl).Err()
}
