package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/bewatu/internal/network"
)

const defaultKeyPrefix = "bewatu:session:"

// Redis stores snapshots as JSON strings with an expiry.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configures the Redis backed store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedis connects to Redis and verifies the connection with a PING.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return NewRedisWithClient(client, opts.Prefix, opts.TTL), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(id string) string {
	return r.prefix + id
}

func (r *Redis) Get(ctx context.Context, sessionID string) (*network.Data, error) {
	id, err := validateID(sessionID)
	if err != nil {
		return nil, err
	}

	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %q: %w", id, err)
	}

	var data network.Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode cached session %q: %w", id, err)
	}
	return &data, nil
}

func (r *Redis) Set(ctx context.Context, sessionID string, data *network.Data) error {
	id, err := validateID(sessionID)
	if err != nil {
		return err
	}
	if data == nil {
		return errors.New("session data is required")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", id, err)
	}

	if err := r.client.Set(ctx, r.key(id), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("set session %q: %w", id, err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context, sessionID string) error {
	id, err := validateID(sessionID)
	if err != nil {
		return err
	}

	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("clear session %q: %w", id, err)
	}
	return nil
}

// HealthCheck sends a PING to Redis.
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
