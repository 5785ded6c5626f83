package runlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// RedisStore journals runs in Redis. Each record is a JSON value under
// {prefix}run:{id}; {prefix}runs lists ids newest first and is trimmed to
// the limit.
type RedisStore struct {
	client *backend.Client
	prefix string
	limit  int
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithTTL expires records after ttl. Zero keeps them until trimmed.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithLimit sets how many run ids the index keeps.
func WithLimit(limit int) RedisOption {
	return func(s *RedisStore) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(addr, password string, db int, opts ...RedisOption) *RedisStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(rdb, opts...)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "naogw:",
		limit:  DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id uuid.UUID) string {
	return s.prefix + "run:" + id.String()
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "runs"
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save writes r and pushes its id onto the index.
func (s *RedisStore) Save(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(r.ID), data, s.ttl)
	pipe.LRem(ctx, s.indexKey(), 0, r.ID.String())
	pipe.LPush(ctx, s.indexKey(), r.ID.String())
	pipe.LTrim(ctx, s.indexKey(), 0, int64(s.limit-1))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}
	return nil
}

// Get loads a run by id.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("failed to get run from redis: %w", err)
	}

	var r Record
	if err := json.Unmarshal(val, &r); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return r, nil
}

// List returns up to limit runs, newest first. Ids whose record expired
// are skipped.
func (s *RedisStore) List(ctx context.Context, limit int) ([]Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.LRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + "run:" + id
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}

	out := make([]Record, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
