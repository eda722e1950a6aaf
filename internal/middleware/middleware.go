// Package middleware содержит middleware компоненты.
package middleware

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"evdash/internal/config"
)

// Middleware представляет набор HTTP middleware приложения
type Middleware struct {
	rateLimiter *RateLimiter
	logger      *zap.Logger
	config      *config.Config
}

// New создает новый middleware
func New(cfg *config.Config, logger *zap.Logger) *Middleware {
	m := &Middleware{
		logger: logger,
		config: cfg,
	}

	if cfg.RateLimitConfig.Enabled {
		m.rateLimiter = NewRateLimiter(cfg.RateLimitConfig.RequestsPerSecond, cfg.RateLimitConfig.Burst, logger)
	}

	return m
}

// Apply подключает цепочку middleware к роутеру:
// RealIP (только за доверенным прокси), recovery, логирование, CORS, rate limiting
func (m *Middleware) Apply(r chi.Router) {
	if m.config.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(RecoveryMiddleware(m.logger))
	r.Use(LoggingMiddleware(m.logger))
	r.Use(CORSMiddleware(m.config.CORSAllowedOrigins))

	if m.rateLimiter != nil {
		r.Use(m.rateLimiter.Middleware)
	}
}

// RunCleanup очищает устаревшие записи rate limiter до отмены контекста
func (m *Middleware) RunCleanup(ctx context.Context) {
	if m.rateLimiter == nil {
		<-ctx.Done()
		return
	}
	m.rateLimiter.RunCleanup(ctx, 5*time.Minute)
}
