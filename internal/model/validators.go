// Package model содержит ошибки и валидаторы.
//
// Группа: BASE - Базовые компоненты
// Содержит: ErrInvalidRequest, ErrNotFound, ValidationError, ValidationErrors
package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest запрос отклонен из-за некорректных параметров
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")
)

// ValidationError представляет ошибку валидации
type ValidationError struct {
	Field   string
	Message string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s %s", ve.Field, ve.Message)
}

// Unwrap позволяет сравнивать ошибку с ErrInvalidRequest
func (ve ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// ValidationErrors представляет множество ошибок валидации
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Unwrap позволяет сравнивать ошибки с ErrInvalidRequest
func (ve ValidationErrors) Unwrap() error {
	return ErrInvalidRequest
}

// HasErrors проверяет, есть ли ошибки валидации
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// ValidateRequired проверяет, что поле не пустое
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: "is required"}
	}
	return nil
}
