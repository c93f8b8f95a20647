package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Storage is durable key/value storage for cart snapshots. Get returns
// an empty string for a missing key.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage is an in-process Storage, used in tests and for
// sessions without durable storage.
type MemoryStorage struct {
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, error) {
	return m.values[key], nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	delete(m.values, key)
	return nil
}

// RedisStorage persists cart snapshots in Redis, namespaced per
// session so concurrent clients do not collide.
type RedisStorage struct {
	rdb     *redis.Client
	session string
}

// NewRedisStorage connects to Redis and returns a storage scoped to
// the given session id.
func NewRedisStorage(addr, password string, db int, sessionID string) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStorage{rdb: rdb, session: sessionID}, nil
}

// Close closes the Redis connection
func (r *RedisStorage) Close() error {
	return r.rdb.Close()
}

func (r *RedisStorage) storageKey(key string) string {
	return fmt.Sprintf("cart:%s:%s", r.session, key)
}

func (r *RedisStorage) Get(key string) (string, error) {
	value, err := r.rdb.Get(context.Background(), r.storageKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *RedisStorage) Set(key, value string) error {
	return r.rdb.Set(context.Background(), r.storageKey(key), value, 0).Err()
}

func (r *RedisStorage) Remove(key string) error {
	return r.rdb.Del(context.Background(), r.storageKey(key)).Err()
}
