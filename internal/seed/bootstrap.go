// Package seed наполняет хранилище записей из исходного набора данных.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"evdash/internal/model"
	"evdash/internal/schema"
)

// Bootstrapper выполняет однократное наполнение хранилища
type Bootstrapper struct {
	repo   model.RecordRepository
	source Source
	schema *schema.Schema
	logger *zap.Logger
}

// NewBootstrapper создает загрузчик набора данных
func NewBootstrapper(repo model.RecordRepository, source Source, s *schema.Schema, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{
		repo:   repo,
		source: source,
		schema: s,
		logger: logger,
	}
}

// Run наполняет хранилище, если оно пустое, и возвращает число вставленных записей.
// Повторный запуск над непустым хранилищем ничего не делает.
func (b *Bootstrapper) Run(ctx context.Context) (int, error) {
	start := time.Now()

	count, err := b.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	if count > 0 {
		b.logger.Info("Store already seeded", zap.Int("records", count))
		return 0, nil
	}

	records, err := b.load(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		b.logger.Warn("Seed source contains no data rows", zap.String("source", b.source.Name()))
		return 0, nil
	}

	if err := b.repo.InsertMany(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to insert seed records: %w", err)
	}

	b.logger.Info("Store seeded",
		zap.String("source", b.source.Name()),
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)))
	return len(records), nil
}

func (b *Bootstrapper) load(ctx context.Context) ([]model.Record, error) {
	rc, err := b.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	rows, err := Decode(b.source.Name(), rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", b.source.Name(), err)
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.Record{Fields: b.schema.Normalize(row)})
	}
	return records, nil
}
