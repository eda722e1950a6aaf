// Package model содержит предикаты отбора записей.
//
// Группа: QUERY - Условия выборки
// Содержит: Operator, Condition, Predicate
package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Operator оператор условия фильтра
type Operator string

// Операторы фильтра в том виде, в котором их присылает клиент
const (
	OpContains   Operator = "contains"
	OpEquals     Operator = "equals"
	OpStartsWith Operator = "starts with"
	OpEndsWith   Operator = "ends with"
	OpIsEmpty    Operator = "is empty"
)

// Operators возвращает все поддерживаемые операторы
func Operators() []Operator {
	return []Operator{OpContains, OpEquals, OpStartsWith, OpEndsWith, OpIsEmpty}
}

// IsValid проверяет, что оператор поддерживается
func (o Operator) IsValid() bool {
	switch o {
	case OpContains, OpEquals, OpStartsWith, OpEndsWith, OpIsEmpty:
		return true
	default:
		return false
	}
}

// Condition условие над одним полем записи
type Condition struct {
	Field    string
	Operator Operator
	// Numeric сравнение с Number вместо Text; используется только с OpEquals
	Numeric bool
	Text    string
	Number  float64
}

// MatchMode способ объединения условий
type MatchMode int

const (
	// MatchAll все условия должны выполняться
	MatchAll MatchMode = iota
	// MatchAny достаточно одного условия
	MatchAny
)

// Predicate скомпилированное условие выборки.
// Пустой список условий отбирает все записи.
type Predicate struct {
	Mode       MatchMode
	Conditions []Condition
}

// IsEmpty сообщает, что предикат не ограничивает выборку
func (p Predicate) IsEmpty() bool {
	return len(p.Conditions) == 0
}

// Match проверяет запись на соответствие предикату
func (p Predicate) Match(rec Record) bool {
	if p.IsEmpty() {
		return true
	}

	for _, c := range p.Conditions {
		ok := c.Match(rec)
		if p.Mode == MatchAny && ok {
			return true
		}
		if p.Mode == MatchAll && !ok {
			return false
		}
	}
	return p.Mode == MatchAll
}

// Match проверяет одно условие; отсутствующее поле не удовлетворяет ни одному оператору
func (c Condition) Match(rec Record) bool {
	raw, ok := rec.Get(c.Field)
	if !ok {
		return false
	}

	if c.Numeric {
		n, ok := raw.(float64)
		return ok && n == c.Number
	}

	value, ok := raw.(string)
	if !ok {
		return false
	}

	switch c.Operator {
	case OpEquals:
		return value == c.Text
	case OpIsEmpty:
		return value == ""
	case OpContains:
		return strings.Contains(fold(value), fold(c.Text))
	case OpStartsWith:
		return strings.HasPrefix(fold(value), fold(c.Text))
	case OpEndsWith:
		return strings.HasSuffix(fold(value), fold(c.Text))
	default:
		return false
	}
}

// fold приводит строку к нижнему регистру так же, как lower() в PostgreSQL для ILIKE:
// посимвольно, без раскрытия "ß" в "ss".
// Caser хранит состояние, поэтому создается на каждый вызов.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
