package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix prefixes every key RedisStore writes.
const RedisKeyPrefix = "vc:session:"

// RedisStore is session storage shared by several server instances. Every
// write refreshes the TTL so idle tabs age out on their own.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore scopes client to one tab's session.
// PRE: session is non-empty; ttl <= 0 means keys never expire
func NewRedisStore(client *redis.Client, session string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: RedisKeyPrefix + session + ":", ttl: ttl}
}

// DialRedis connects and pings.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	const op = "kv.DialRedis"
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

func (r *RedisStore) Put(ctx context.Context, key, value string) error {
	const op = "kv.RedisStore.Put"
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "kv.RedisStore.Get"
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	const op = "kv.RedisStore.Remove"
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Keys scans the session's keys and returns them without the prefix, sorted.
func (r *RedisStore) Keys(ctx context.Context) ([]string, error) {
	const op = "kv.RedisStore.Keys"
	keys := []string{}
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sort.Strings(keys)
	return keys, nil
}
