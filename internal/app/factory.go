// Package app содержит фабрику компонентов приложения.
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"evdash/internal/cache"
	"evdash/internal/config"
	"evdash/internal/handlers"
	"evdash/internal/health"
	"evdash/internal/middleware"
	"evdash/internal/schema"
	"evdash/internal/seed"
	"evdash/internal/service"
	"evdash/internal/storage"
)

// ComponentFactory создает компоненты приложения
type ComponentFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewComponentFactory создает новую фабрику компонентов
func NewComponentFactory(config *config.Config, logger *zap.Logger) *ComponentFactory {
	if logger == nil {
		panic("Logger cannot be nil")
	}
	if config == nil {
		logger.Fatal("Config cannot be nil")
	}

	return &ComponentFactory{
		config: config,
		logger: logger,
	}
}

// CreateAppDataDirectory создает директорию данных приложения
func (f *ComponentFactory) CreateAppDataDirectory() error {
	dataDir := f.config.AppDataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		f.logger.Error("Failed to create app data directory", zap.String("dir", dataDir), zap.Error(err))
		return fmt.Errorf("failed to create app data directory: %w", err)
	}
	f.logger.Info("App data directory ready", zap.String("dir", dataDir))
	return nil
}

// CreateSchema загружает схему полей: встроенную или из SCHEMA_PATH
func (f *ComponentFactory) CreateSchema() (*schema.Schema, error) {
	if f.config.SchemaPath == "" {
		return schema.Default(), nil
	}

	s, err := schema.Load(f.config.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	f.logger.Info("Field schema loaded", zap.String("path", f.config.SchemaPath), zap.Int("fields", len(s.Fields)))
	return s, nil
}

// CreateStore создает хранилище записей
func (f *ComponentFactory) CreateStore(ctx context.Context) (storage.Store, error) {
	store, err := storage.Open(ctx, f.config, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	f.logger.Info("Record store created successfully", zap.Bool("in_memory", f.config.UsesMemoryStore()))
	return store, nil
}

// CreateCache создает кэш ответов
func (f *ComponentFactory) CreateCache(ctx context.Context) (cache.Cache, error) {
	c, err := cache.New(ctx, f.config.CacheConfig, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return c, nil
}

// CreateBootstrapper создает загрузчик набора данных
func (f *ComponentFactory) CreateBootstrapper(store storage.Store, s *schema.Schema) (*seed.Bootstrapper, error) {
	source, err := seed.NewSource(f.config.SeedSource, f.config.S3Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create seed source: %w", err)
	}
	return seed.NewBootstrapper(store, source, s, f.logger), nil
}

// CreateHealthServer создает сервер health check
func (f *ComponentFactory) CreateHealthServer(store storage.Store) *health.Server {
	if !f.config.HealthCheckEnabled {
		f.logger.Info("Health check server is disabled")
		return nil
	}

	addr := net.JoinHostPort(f.config.HTTPHost, strconv.Itoa(f.config.HealthPort))
	server := health.NewServer(addr, store, f.logger)
	f.logger.Info("Health check server created", zap.String("addr", addr))
	return server
}

// CreateMiddleware создает middleware
func (f *ComponentFactory) CreateMiddleware() *middleware.Middleware {
	m := middleware.New(f.config, f.logger)
	f.logger.Info("Middleware created successfully", zap.Bool("rate_limit", f.config.RateLimitConfig.Enabled))
	return m
}

// CreateAPIServer создает HTTP сервер API
func (f *ComponentFactory) CreateAPIServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              f.config.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// CreateApp создает приложение со всеми зависимостями
func (f *ComponentFactory) CreateApp(ctx context.Context) (*App, error) {
	if err := f.ValidateConfig(); err != nil {
		return nil, err
	}

	// Создаем директорию данных приложения
	if err := f.CreateAppDataDirectory(); err != nil {
		return nil, err
	}

	s, err := f.CreateSchema()
	if err != nil {
		return nil, err
	}

	store, err := f.CreateStore(ctx)
	if err != nil {
		return nil, err
	}

	bootstrapper, err := f.CreateBootstrapper(store, s)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	c, err := f.CreateCache(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	mw := f.CreateMiddleware()
	cars := service.NewCarService(store, s, c, f.config.CacheConfig.TTL, f.logger)
	router := NewRouter(handlers.New(cars, f.logger), mw)

	app := &App{
		config:       f.config,
		logger:       f.logger,
		store:        store,
		cache:        c,
		bootstrapper: bootstrapper,
		health:       f.CreateHealthServer(store),
		middleware:   mw,
		api:          f.CreateAPIServer(router),
	}

	f.logger.Info("Application created successfully with all dependencies")
	return app, nil
}

// ValidateConfig проверяет конфигурацию на корректность
func (f *ComponentFactory) ValidateConfig() error {
	if f.config == nil {
		return fmt.Errorf("config is nil")
	}
	if err := f.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
