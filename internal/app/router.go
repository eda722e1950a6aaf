// Package app содержит маршрутизацию HTTP запросов.
package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"evdash/internal/handlers"
	"evdash/internal/middleware"
)

// NewRouter создает роутер API с цепочкой middleware
func NewRouter(h *handlers.Handlers, mw *middleware.Middleware) chi.Router {
	r := chi.NewRouter()
	mw.Apply(r)

	r.Get("/", rootHandler)
	h.Register(r)

	return r
}

func rootHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Server is working"))
}
