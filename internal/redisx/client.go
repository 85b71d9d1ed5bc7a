package redisx

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func Exists(ctx context.Context, rdb redis.Cmdable, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// MarkOnce sets dedup:{service}:{id} and reports whether this caller set it first.
func MarkOnce(ctx context.Context, rdb redis.Cmdable, service, id string) (bool, error) {
	return rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, service, id), "1", TTLDedup).Result()
}

// Forget drops a dedup mark so the event can be processed again.
func Forget(ctx context.Context, rdb redis.Cmdable, service, id string) error {
	return rdb.Del(ctx, fmt.Sprintf(KeyDedup, service, id)).Err()
}

// Dedup binds MarkOnce/Forget to one consuming service.
type Dedup struct {
	RDB     redis.Cmdable
	Service string
}

func (d Dedup) MarkOnce(ctx context.Context, eventID string) (bool, error) {
	return MarkOnce(ctx, d.RDB, d.Service, eventID)
}

func (d Dedup) Forget(ctx context.Context, eventID string) error {
	return Forget(ctx, d.RDB, d.Service, eventID)
}

// Cache is a string key/value view over Redis where a miss is not an error.
type Cache struct {
	RDB redis.Cmdable
}

func (c Cache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.RDB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.RDB.Set(ctx, key, value, ttl).Err()
}

func (c Cache) Del(ctx context.Context, key string) error {
	return c.RDB.Del(ctx, key).Err()
}
