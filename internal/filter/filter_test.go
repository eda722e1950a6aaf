package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evdash/internal/model"
	"evdash/internal/schema"
)

func dataset() []model.Record {
	return []model.Record{
		{ID: "1", Fields: map[string]any{"Brand": "Tesla", "Model": "Model S", "Range_Km": float64(515), "PlugType": "Type 2 CCS"}},
		{ID: "2", Fields: map[string]any{"Brand": "BMW", "Model": "i4", "Range_Km": float64(470), "PlugType": ""}},
		{ID: "3", Fields: map[string]any{"Brand": "tesla", "Model": "Model 3", "Range_Km": float64(450)}},
		{ID: "4", Fields: map[string]any{"Brand": "TESLA X", "Model": "Cybertruck", "Range_Km": "", "FastCharge_KmH": "-"}},
	}
}

func run(t *testing.T, pred model.Predicate) []string {
	t.Helper()
	var ids []string
	for _, rec := range dataset() {
		if pred.Match(rec) {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

func TestCompile_Validation(t *testing.T) {
	c := NewCompiler(schema.Default())

	tests := []struct {
		name   string
		triple Triple
		errMsg string
	}{
		{"нет поля", Triple{Operator: "contains", Value: "Tesla"}, "field is required"},
		{"нет оператора", Triple{Field: "Brand", Value: "Tesla"}, "operator is required"},
		{"нет поля и оператора", Triple{}, "field is required; operator is required"},
		{"поле из пробелов", Triple{Field: "  ", Operator: "contains"}, "field is required"},
		{"неизвестный оператор", Triple{Field: "Brand", Operator: "greater than", Value: "1"}, `operator "greater than" is invalid`},
		{"оператор в другом регистре", Triple{Field: "Brand", Operator: "Contains", Value: "x"}, `operator "Contains" is invalid`},
		{"contains для числового поля", Triple{Field: "Range_Km", Operator: "contains", Value: "4"}, "not supported for numeric field Range_Km"},
		{"starts with для числового поля", Triple{Field: "range_km", Operator: "starts with", Value: "4"}, "not supported for numeric field Range_Km"},
		{"нечисловое значение", Triple{Field: "Efficiency_WhKm", Operator: "equals", Value: "fast"}, "value must be a number"},
		{"пустое числовое значение", Triple{Field: "Range_Km", Operator: "equals", Value: ""}, "value must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(tt.triple)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidRequest))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCompile_Semantics(t *testing.T) {
	c := NewCompiler(schema.Default())

	tests := []struct {
		name     string
		triple   Triple
		expected []string
	}{
		{"contains без учета регистра", Triple{"Brand", "contains", "Tesla"}, []string{"1", "3", "4"}},
		{"equals с учетом регистра", Triple{"Brand", "equals", "Tesla"}, []string{"1"}},
		{"starts with", Triple{"Model", "starts with", "model"}, []string{"1", "3"}},
		{"ends with", Triple{"Brand", "ends with", "LA"}, []string{"1", "3"}},
		{"is empty не включает отсутствующие поля", Triple{"PlugType", "is empty", ""}, []string{"2"}},
		{"is empty игнорирует значение", Triple{"PlugType", "is empty", "ignored"}, []string{"2"}},
		{"регистр имени поля нормализуется", Triple{"brand", "equals", "BMW"}, []string{"2"}},
		{"числовое равенство по строке", Triple{"Range_Km", "equals", "470"}, []string{"2"}},
		{"числовое равенство с дробной частью", Triple{"range_km", "equals", " 450.0 "}, []string{"3"}},
		{"числовое is empty", Triple{"Range_Km", "is empty", ""}, []string{"4"}},
		{"нечисловое значение в числовом поле", Triple{"FastCharge_KmH", "is empty", ""}, nil},
		{"необъявленное поле текстовое", Triple{"Color", "contains", "red"}, nil},
		{"значение как литерал, а не шаблон", Triple{"Model", "contains", "."}, nil},
		{"пустая подстрока", Triple{"Model", "contains", ""}, []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := c.Compile(tt.triple)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, run(t, pred))
		})
	}
}

func TestCompile_Condition(t *testing.T) {
	c := NewCompiler(schema.Default())

	pred, err := c.Compile(Triple{Field: "efficiency_whkm", Operator: "equals", Value: "5"})
	require.NoError(t, err)
	assert.Equal(t, model.Predicate{
		Mode: model.MatchAll,
		Conditions: []model.Condition{
			{Field: "Efficiency_WhKm", Operator: model.OpEquals, Numeric: true, Number: 5},
		},
	}, pred)
}

func TestCompile_TextOperatorsOnTextualNumbers(t *testing.T) {
	c := NewCompiler(schema.Default())

	records := []model.Record{
		{ID: "1", Fields: map[string]any{"PriceEuro": "55480", "Seats": "5", "AccelSec": "4.6"}},
		{ID: "2", Fields: map[string]any{"PriceEuro": "30000", "Seats": "4", "AccelSec": "10"}},
	}

	tests := []struct {
		triple   Triple
		expected []string
	}{
		{Triple{"PriceEuro", "contains", "5"}, []string{"1"}},
		{Triple{"PriceEuro", "equals", "30000"}, []string{"2"}},
		{Triple{"Seats", "starts with", "4"}, []string{"2"}},
		{Triple{"AccelSec", "ends with", ".6"}, []string{"1"}},
		{Triple{"TopSpeed_KmH", "contains", "1"}, nil},
		{Triple{"FastCharge_KmH", "contains", "5"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.triple.Field+" "+tt.triple.Operator, func(t *testing.T) {
			pred, err := c.Compile(tt.triple)
			require.NoError(t, err)
			require.Len(t, pred.Conditions, 1)
			assert.False(t, pred.Conditions[0].Numeric)

			var ids []string
			for _, rec := range records {
				if pred.Match(rec) {
					ids = append(ids, rec.ID)
				}
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestSearch(t *testing.T) {
	c := NewCompiler(schema.Default())

	assert.True(t, c.Search("").IsEmpty())
	assert.True(t, c.Search("   ").IsEmpty())

	assert.Equal(t, []string{"2"}, run(t, c.Search("bmw")))
	assert.Equal(t, []string{"2"}, run(t, c.Search("I4")))
	assert.Equal(t, []string{"1", "3"}, run(t, c.Search("model")))
	assert.Nil(t, run(t, c.Search("porsche")))

	pred := c.Search("x")
	assert.Equal(t, model.MatchAny, pred.Mode)
	assert.Len(t, pred.Conditions, 2)
}

func TestSearch_CustomSchema(t *testing.T) {
	s, err := schema.Parse([]byte("fields:\n  - name: PlugType\n    searchable: true\n"))
	require.NoError(t, err)

	c := NewCompiler(s)
	assert.Equal(t, []string{"1"}, run(t, c.Search("ccs")))
}
