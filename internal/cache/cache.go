// Package cache содержит кэш ответов для чтения записей.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"evdash/internal/config"
)

// Cache определяет интерфейс кэша
type Cache interface {
	// Get возвращает значение и признак попадания
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set сохраняет значение на время ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete удаляет ключи
	Delete(ctx context.Context, keys ...string) error
	// Close освобождает ресурсы
	Close() error
}

// New создает кэш по конфигурации
func New(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (Cache, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		c, err := NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		logger.Info("Redis cache connected", zap.String("addr", cfg.RedisAddr))
		return c, nil
	case config.CacheBackendMemory:
		logger.Info("Using in-memory cache", zap.Duration("ttl", cfg.TTL))
		return NewMemory(), nil
	default:
		return Noop{}, nil
	}
}

// Noop кэш, который ничего не хранит
type Noop struct{}

// Get всегда возвращает промах
func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set ничего не делает
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete ничего не делает
func (Noop) Delete(context.Context, ...string) error { return nil }

// Close ничего не делает
func (Noop) Close() error { return nil }

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory кэш в памяти процесса с TTL
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory создает кэш в памяти
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get возвращает значение, если оно не устарело
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set сохраняет копию значения
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

// Delete удаляет ключи
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

// Close очищает кэш
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry)
	return nil
}

// Redis кэш в Redis
type Redis struct {
	client *redis.Client
}

// NewRedis подключается к Redis и проверяет соединение
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client}, nil
}

// Get возвращает значение из Redis
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	return value, true, nil
}

// Set сохраняет значение в Redis
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Delete удаляет ключи из Redis
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (r *Redis) Close() error {
	return r.client.Close()
}
