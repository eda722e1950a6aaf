// Package filter компилирует пользовательский фильтр (поле, оператор, значение)
// в предикат выборки записей.
package filter

import (
	"fmt"
	"strings"

	"evdash/internal/model"
	"evdash/internal/schema"
)

// Triple входные параметры фильтра
type Triple struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Compiler компилирует фильтры с учетом схемы полей
type Compiler struct {
	schema *schema.Schema
}

// NewCompiler создает новый компилятор фильтров
func NewCompiler(s *schema.Schema) *Compiler {
	return &Compiler{schema: s}
}

// Compile проверяет фильтр и строит предикат.
// Ошибки валидации сравнимы с model.ErrInvalidRequest.
func (c *Compiler) Compile(t Triple) (model.Predicate, error) {
	var errs model.ValidationErrors

	if err := model.ValidateRequired("field", t.Field); err != nil {
		errs = append(errs, err.(model.ValidationError))
	}
	if err := model.ValidateRequired("operator", t.Operator); err != nil {
		errs = append(errs, err.(model.ValidationError))
	}
	if errs.HasErrors() {
		return model.Predicate{}, errs
	}

	op := model.Operator(t.Operator)
	if !op.IsValid() {
		return model.Predicate{}, model.ValidationError{Field: "operator", Message: fmt.Sprintf("%q is invalid", t.Operator)}
	}

	field, typ := c.schema.Resolve(t.Field)
	cond := model.Condition{Field: field, Operator: op}

	if typ == schema.FieldNumber {
		switch op {
		case model.OpEquals:
			n, ok := schema.ParseNumber(t.Value)
			if !ok {
				return model.Predicate{}, model.ValidationError{Field: "value", Message: "must be a number for numeric field " + field}
			}
			cond.Numeric = true
			cond.Number = n
		case model.OpIsEmpty:
			// пустые ячейки числовых полей хранятся как ""
		default:
			return model.Predicate{}, model.ValidationError{
				Field:   "operator",
				Message: fmt.Sprintf("%q is not supported for numeric field %s", t.Operator, field),
			}
		}
		return model.Predicate{Mode: model.MatchAll, Conditions: []model.Condition{cond}}, nil
	}

	if op != model.OpIsEmpty {
		cond.Text = t.Value
	}
	return model.Predicate{Mode: model.MatchAll, Conditions: []model.Condition{cond}}, nil
}

// Search строит предикат полнотекстового поиска: подстрока без учета регистра
// в любом из полей, помеченных в схеме как searchable. Пустой запрос отбирает все.
func (c *Compiler) Search(q string) model.Predicate {
	q = strings.TrimSpace(q)
	if q == "" {
		return model.Predicate{}
	}

	fields := c.schema.SearchFields()
	conds := make([]model.Condition, 0, len(fields))
	for _, f := range fields {
		conds = append(conds, model.Condition{Field: f, Operator: model.OpContains, Text: q})
	}
	return model.Predicate{Mode: model.MatchAny, Conditions: conds}
}
