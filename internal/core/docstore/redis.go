package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "hireplan:"

// RedisStore keeps each document under <prefix><name>. Keys never expire:
// sessions persist indefinitely.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(addr, password string, db int, prefix string) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreFromClient(client, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, name string, body []byte) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid document name %q", name)
	}
	return s.client.Set(ctx, s.key(name), body, 0).Err()
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	pattern := s.key(strings.TrimSuffix(prefix, "/")) + "/*"
	var names []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Name implements Store.
func (s *RedisStore) Name() string { return DriverRedis }

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
