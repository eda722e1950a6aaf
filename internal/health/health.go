// Package health содержит health check сервер.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const checkTimeout = 2 * time.Second

// Server представляет health check сервер
type Server struct {
	server *http.Server
	store  Pinger
	ready  atomic.Bool
	logger *zap.Logger
}

// NewServer создает новый health check сервер
func NewServer(addr string, store Pinger, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	healthServer := &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		store:  store,
		logger: logger,
	}

	// Регистрируем маршруты
	mux.HandleFunc("/health", healthServer.healthHandler)
	mux.HandleFunc("/ready", healthServer.readyHandler)
	mux.HandleFunc("/live", healthServer.liveHandler)

	return healthServer
}

// Handler возвращает обработчик маршрутов сервера
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetReady отмечает завершение начальной загрузки данных
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Start запускает health check сервер; штатная остановка не считается ошибкой
func (s *Server) Start() error {
	s.logger.Info("Starting health check server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server failed: %w", err)
	}
	return nil
}

// Stop останавливает health check сервер
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping health check server")
	return s.server.Shutdown(ctx)
}

// healthHandler обрабатывает запросы /health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	// Проверяем подключение к хранилищу
	if err := s.checkStore(r.Context()); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
		s.logger.Error("Health check failed", zap.Error(err))
	}

	writeStatus(w, code, status)
}

// readyHandler обрабатывает запросы /ready
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK

	// Проверяем готовность к работе
	if err := s.checkReadiness(r.Context()); err != nil {
		status = "not ready"
		code = http.StatusServiceUnavailable
		s.logger.Warn("Readiness check failed", zap.Error(err))
	}

	writeStatus(w, code, status)
}

// liveHandler обрабатывает запросы /live
func (s *Server) liveHandler(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, "alive")
}

// checkStore проверяет доступность хранилища записей
func (s *Server) checkStore(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("store is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store ping failed: %w", err)
	}
	return nil
}

// checkReadiness проверяет, что данные загружены и хранилище доступно
func (s *Server) checkReadiness(ctx context.Context) error {
	if !s.ready.Load() {
		return fmt.Errorf("dataset bootstrap is not finished")
	}

	if err := s.checkStore(ctx); err != nil {
		return fmt.Errorf("store is not ready: %w", err)
	}

	return nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, status, time.Now().Format(time.RFC3339))
}
