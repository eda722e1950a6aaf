// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"evdash/internal/cache"
	"evdash/internal/filter"
	"evdash/internal/model"
	"evdash/internal/schema"
)

const (
	cacheKeyAll       = "records:all"
	cacheKeyRecordPfx = "record:"
)

// CarService содержит операции над набором данных электромобилей
type CarService struct {
	repo     model.RecordRepository
	compiler *filter.Compiler
	cache    cache.Cache
	ttl      time.Duration
	logger   *zap.Logger

	// mu упорядочивает запись в кэш и инвалидацию; generation растет при каждом удалении
	mu         sync.Mutex
	generation uint64
}

// NewCarService создает сервис записей
func NewCarService(repo model.RecordRepository, s *schema.Schema, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CarService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CarService{
		repo:     repo,
		compiler: filter.NewCompiler(s),
		cache:    c,
		ttl:      ttl,
		logger:   logger,
	}
}

// List возвращает все записи в порядке вставки
func (s *CarService) List(ctx context.Context) ([]model.Record, error) {
	var records []model.Record
	if s.cached(ctx, cacheKeyAll, &records) {
		return records, nil
	}

	gen := s.currentGeneration()
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	s.store(ctx, gen, cacheKeyAll, records)
	return records, nil
}

// Get возвращает запись по идентификатору или nil, если записи нет
func (s *CarService) Get(ctx context.Context, id string) (*model.Record, error) {
	key := cacheKeyRecordPfx + id

	var cached model.Record
	if s.cached(ctx, key, &cached) {
		return &cached, nil
	}

	gen := s.currentGeneration()
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	if rec == nil {
		return nil, nil
	}

	s.store(ctx, gen, key, rec)
	return rec, nil
}

// Delete удаляет запись; удаление отсутствующей записи не является ошибкой
func (s *CarService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	s.invalidate(ctx, id)

	s.logger.Debug("Record delete processed", zap.String("id", id), zap.Bool("deleted", deleted))
	return nil
}

// Search возвращает записи, у которых подстрока q встречается в полях поиска
func (s *CarService) Search(ctx context.Context, q string) ([]model.Record, error) {
	records, err := s.repo.Find(ctx, s.compiler.Search(q))
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	return records, nil
}

// Filter возвращает записи, удовлетворяющие фильтру.
// Ошибки валидации сравнимы с model.ErrInvalidRequest.
func (s *CarService) Filter(ctx context.Context, t filter.Triple) ([]model.Record, error) {
	pred, err := s.compiler.Compile(t)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Find(ctx, pred)
	if err != nil {
		return nil, fmt.Errorf("failed to filter records: %w", err)
	}
	return records, nil
}

// cached читает значение из кэша; ошибки кэша не прерывают запрос
func (s *CarService) cached(ctx context.Context, key string, dst any) bool {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("Cached value is corrupted", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CarService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// invalidate сбрасывает ключи записи и списка. Чтения, начатые до удаления,
// после этого не записывают свой результат в кэш.
func (s *CarService) invalidate(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if err := s.cache.Delete(ctx, cacheKeyRecordPfx+id, cacheKeyAll); err != nil {
		s.logger.Warn("Failed to invalidate cache", zap.String("id", id), zap.Error(err))
	}
}

// store кэширует значение, прочитанное при поколении gen; устаревшее значение отбрасывается
func (s *CarService) store(ctx context.Context, gen uint64, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("Failed to encode cache value", zap.String("key", key), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		s.logger.Debug("Skipping stale cache write", zap.String("key", key))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
