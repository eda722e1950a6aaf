// Package app содержит основную логику приложения.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"evdash/internal/cache"
	"evdash/internal/config"
	"evdash/internal/health"
	"evdash/internal/middleware"
	"evdash/internal/seed"
	"evdash/internal/storage"
)

// App представляет HTTP сервис набора данных
type App struct {
	config       *config.Config
	logger       *zap.Logger
	store        storage.Store
	cache        cache.Cache
	bootstrapper *seed.Bootstrapper
	health       *health.Server
	middleware   *middleware.Middleware
	api          *http.Server
}

// New создает приложение через фабрику компонентов
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	return NewComponentFactory(cfg, logger).CreateApp(ctx)
}

// Handler возвращает корневой обработчик API
func (a *App) Handler() http.Handler {
	return a.api.Handler
}

// Run запускает сервис и блокируется до отмены контекста.
// Данные загружаются до открытия порта API; ошибка загрузки завершает работу.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	// Health check сервер стартует первым, /ready отвечает not ready до загрузки
	if a.health != nil {
		g.Go(a.health.Start)
	}

	// Остановка серверов по отмене контекста
	g.Go(func() error {
		<-gctx.Done()
		a.shutdown()
		return nil
	})

	inserted, err := a.bootstrapper.Run(gctx)
	if err != nil {
		a.logger.Error("Dataset bootstrap failed", zap.Error(err))
		cancel()
		if gerr := g.Wait(); gerr != nil {
			return gerr
		}
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	a.logger.Info("Dataset bootstrap finished", zap.Int("inserted", inserted))

	if a.health != nil {
		a.health.SetReady(true)
	}

	ln, err := net.Listen("tcp", a.api.Addr)
	if err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("failed to listen on %s: %w", a.api.Addr, err)
	}

	g.Go(func() error {
		a.logger.Info("Starting API server", zap.String("addr", ln.Addr().String()))
		if err := a.api.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.middleware.RunCleanup(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("Application stopped")
	return nil
}

// shutdown останавливает серверы в пределах SHUTDOWN_TIMEOUT
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down servers", zap.Duration("timeout", a.config.ShutdownTimeout))

	if err := a.api.Shutdown(ctx); err != nil {
		a.logger.Error("API server shutdown failed", zap.Error(err))
	}
	if a.health != nil {
		if err := a.health.Stop(ctx); err != nil {
			a.logger.Error("Health server shutdown failed", zap.Error(err))
		}
	}
}

func (a *App) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("Failed to close cache", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close store", zap.Error(err))
	}
}
