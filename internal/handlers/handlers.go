// Package handlers содержит HTTP обработчики набора данных.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evdash/internal/filter"
	"evdash/internal/middleware"
	"evdash/internal/model"
)

// CarService определяет операции, которые используют обработчики
type CarService interface {
	List(ctx context.Context) ([]model.Record, error)
	Get(ctx context.Context, id string) (*model.Record, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string) ([]model.Record, error)
	Filter(ctx context.Context, t filter.Triple) ([]model.Record, error)
}

// Handlers содержит обработчики маршрутов /data
type Handlers struct {
	cars   CarService
	logger *zap.Logger
}

// New создает новый экземпляр обработчиков
func New(cars CarService, logger *zap.Logger) *Handlers {
	return &Handlers{
		cars:   cars,
		logger: logger,
	}
}

// Register регистрирует маршруты в роутере
func (h *Handlers) Register(r chi.Router) {
	r.Route("/data", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Post("/filter", h.Filter)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure переводит ошибку сервиса в HTTP ответ
func (h *Handlers) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrInvalidRequest) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Error("Request failed",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	h.writeError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handlers) writeRecords(w http.ResponseWriter, records []model.Record) {
	if records == nil {
		records = []model.Record{}
	}
	h.writeJSON(w, http.StatusOK, records)
}
