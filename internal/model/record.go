// Package model содержит модели данных.
//
// Группа: ENTITIES - Основные сущности
// Содержит: Record, RecordRepository
package model

import (
	"context"
	"encoding/json"
	"fmt"
)

// IDKey ключ идентификатора записи в JSON представлении
const IDKey = "_id"

// Record представляет одну строку набора данных (спецификацию электромобиля)
type Record struct {
	ID     string
	Fields map[string]any
}

// Get возвращает значение поля и признак его наличия
func (r Record) Get(field string) (any, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// MarshalJSON сериализует запись в плоский объект с ключом _id
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat[IDKey] = r.ID
	return json.Marshal(flat)
}

// UnmarshalJSON восстанавливает запись из плоского объекта
func (r *Record) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	r.ID = ""
	if raw, ok := flat[IDKey]; ok {
		id, ok := raw.(string)
		if !ok {
			return fmt.Errorf("record %s must be a string", IDKey)
		}
		r.ID = id
		delete(flat, IDKey)
	}
	r.Fields = flat
	return nil
}

// Clone возвращает копию записи, не разделяющую карту полей
func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{ID: r.ID, Fields: fields}
}

// RecordRepository определяет интерфейс хранилища записей
type RecordRepository interface {
	// Count возвращает количество записей
	Count(ctx context.Context) (int, error)
	// InsertMany атомарно вставляет записи и присваивает им идентификаторы
	InsertMany(ctx context.Context, records []Record) error
	// List возвращает все записи в порядке вставки
	List(ctx context.Context) ([]Record, error)
	// Find возвращает записи, удовлетворяющие предикату, в порядке вставки
	Find(ctx context.Context, pred Predicate) ([]Record, error)
	// GetByID возвращает запись или nil, если ее нет
	GetByID(ctx context.Context, id string) (*Record, error)
	// Delete удаляет запись; отсутствие записи не является ошибкой
	Delete(ctx context.Context, id string) (bool, error)
	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
}
