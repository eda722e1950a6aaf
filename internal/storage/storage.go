package storage

import (
	"context"
	"io"

	"go.uber.org/zap"

	"evdash/internal/config"
	"evdash/internal/model"
	"evdash/internal/storage/memory"
)

// Store хранилище записей с освобождением ресурсов
type Store interface {
	model.RecordRepository
	io.Closer
}

type postgresStore struct {
	model.RecordRepository
	pg *Postgres
}

func (s postgresStore) Close() error {
	return s.pg.Close()
}

// Open открывает хранилище, выбранное в конфигурации:
// встроенное в памяти для DB_DSN=memory, иначе PostgreSQL с миграцией схемы
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("Using in-memory record store, data is lost on restart")
		return memory.NewStore(), nil
	}

	pg, err := NewPostgres(ctx, cfg.DatabaseURL, RetryConfig{
		MaxRetries: cfg.DBConnectRetries,
		Delay:      cfg.DBRetryDelay,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := pg.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}

	return postgresStore{RecordRepository: pg.GetRecordRepository(), pg: pg}, nil
}
