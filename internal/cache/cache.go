// Package cache stores short-lived byte values: USDA search results and
// revoked token ids. Redis is used when configured, memory otherwise.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"nutritrack/config"
	"nutritrack/pkg/logger"
)

type Cache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// New connects to Redis when cfg.Addr is set and falls back to an in-memory
// cache when it is empty or unreachable.
func New(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) Cache {
	if cfg.Addr == "" {
		log.Info("Redis not configured, using in-memory cache")
		return NewMemory()
	}
	r := NewRedis(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.client.Ping(pingCtx).Err(); err != nil {
		log.Warnw("Redis unreachable, using in-memory cache", "addr", cfg.Addr, "error", err)
		_ = r.Close()
		return NewMemory()
	}
	log.Infow("Connected to Redis", "addr", cfg.Addr)
	return r
}

type Redis struct {
	client *redis.Client
}

func NewRedis(cfg config.RedisConfig) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}
	return data, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save %s to Redis: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from Redis: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type entry struct {
	value   []byte
	expires time.Time
}

// sweepInterval bounds how often Set scans for expired entries.
const sweepInterval = time.Minute

// Memory is a process-local cache. Expired entries are dropped on read and
// swept from Set at most once per sweepInterval.
type Memory struct {
	mu        sync.Mutex
	items     map[string]entry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry), now: time.Now}
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// sweep must be called with mu held.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		delete(m.items, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value; ttl <= 0 never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweep(now)
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.items[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
