// Package memory содержит хранилище записей в памяти процесса.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"evdash/internal/model"
)

// Store хранит записи в памяти в порядке вставки
type Store struct {
	mu      sync.RWMutex
	records []model.Record
	byID    map[string]int
}

var _ model.RecordRepository = (*Store)(nil)

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Count возвращает количество записей
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// InsertMany вставляет записи одной операцией и присваивает им идентификаторы
func (s *Store) InsertMany(ctx context.Context, records []model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range records {
		rec := records[i].Clone()
		rec.ID = uuid.NewString()
		records[i].ID = rec.ID

		s.byID[rec.ID] = len(s.records)
		s.records = append(s.records, rec)
	}
	return nil
}

// List возвращает все записи
func (s *Store) List(ctx context.Context) ([]model.Record, error) {
	return s.Find(ctx, model.Predicate{})
}

// Find возвращает записи, удовлетворяющие предикату
func (s *Store) Find(ctx context.Context, pred model.Predicate) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Record, 0, len(s.records))
	for _, rec := range s.records {
		if pred.Match(rec) {
			result = append(result, rec.Clone())
		}
	}
	return result, nil
}

// GetByID возвращает запись по идентификатору или nil
func (s *Store) GetByID(_ context.Context, id string) (*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	rec := s.records[i].Clone()
	return &rec, nil
}

// Delete удаляет запись; возвращает false, если записи не было
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return false, nil
	}

	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.byID, id)
	for j := i; j < len(s.records); j++ {
		s.byID[s.records[j].ID] = j
	}
	return true, nil
}

// Ping всегда успешен
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Close ничего не освобождает
func (s *Store) Close() error {
	return nil
}
