package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"evdash/internal/filter"
	"evdash/internal/model"
)

const maxFilterBody = 1 << 20

// List обрабатывает GET /data
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.cars.List(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeRecords(w, records)
}

// Search обрабатывает GET /data/search?q=
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	records, err := h.cars.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeRecords(w, records)
}

// filterRequest тело запроса POST /data/filter
type filterRequest struct {
	Field    string          `json:"field"`
	Operator string          `json:"operator"`
	Value    json.RawMessage `json:"value"`
}

// Filter обрабатывает POST /data/filter
func (h *Handlers) Filter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFilterBody)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	value, err := renderValue(req.Value)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	records, err := h.cars.Filter(r.Context(), filter.Triple{
		Field:    req.Field,
		Operator: req.Operator,
		Value:    value,
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeRecords(w, records)
}

// Get обрабатывает GET /data/{id}; отсутствующая запись возвращается как null
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.cars.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// Delete обрабатывает DELETE /data/{id}
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cars.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully"})
}

// renderValue приводит значение фильтра к строке: строки как есть,
// числа и булевы значения в текстовом виде, null и отсутствие как ""
func renderValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", model.ValidationError{Field: "value", Message: "is malformed"}
	}

	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", model.ValidationError{Field: "value", Message: fmt.Sprintf("must be a string, number or boolean, got %s", kind(val))}
	}
}

func kind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
