// Package schema описывает типы полей набора данных.
//
// Тип поля определяет, как значение хранится при загрузке и какие
// операторы фильтра к нему применимы.
package schema

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldType тип поля
type FieldType string

const (
	// FieldText текстовое поле
	FieldText FieldType = "text"
	// FieldNumber числовое поле
	FieldNumber FieldType = "number"
)

// IsValid проверяет, что тип поддерживается
func (t FieldType) IsValid() bool {
	return t == FieldText || t == FieldNumber
}

// Field описывает одно поле записи
type Field struct {
	Name       string    `yaml:"name"`
	Type       FieldType `yaml:"type"`
	Searchable bool      `yaml:"searchable,omitempty"`
}

// Schema набор объявленных полей
type Schema struct {
	Fields []Field `yaml:"fields"`

	index map[string]int
}

//go:embed default.yaml
var defaultSchema []byte

// Default возвращает встроенную схему набора данных электромобилей
func Default() *Schema {
	s, err := Parse(defaultSchema)
	if err != nil {
		panic(fmt.Sprintf("embedded schema is invalid: %v", err))
	}
	return s
}

// Load загружает схему из YAML файла; пустой путь - встроенная схема
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	return s, nil
}

// Parse разбирает и проверяет схему из YAML
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid schema yaml: %w", err)
	}

	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("schema declares no fields")
	}

	s.index = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, fmt.Errorf("field #%d has no name", i+1)
		}
		if f.Type == "" {
			f.Type = FieldText
		}
		if !f.Type.IsValid() {
			return nil, fmt.Errorf("field %q has unknown type %q", name, f.Type)
		}

		key := strings.ToLower(name)
		if _, exists := s.index[key]; exists {
			return nil, fmt.Errorf("field %q is declared more than once", name)
		}

		s.Fields[i] = Field{Name: name, Type: f.Type, Searchable: f.Searchable}
		s.index[key] = i
	}

	return &s, nil
}

// Lookup ищет поле без учета регистра
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Resolve возвращает каноническое имя и тип поля; необъявленные поля текстовые
func (s *Schema) Resolve(name string) (string, FieldType) {
	if f, ok := s.Lookup(name); ok {
		return f.Name, f.Type
	}
	return strings.TrimSpace(name), FieldText
}

// SearchFields возвращает поля, участвующие в полнотекстовом поиске
func (s *Schema) SearchFields() []string {
	var fields []string
	for _, f := range s.Fields {
		if f.Searchable {
			fields = append(fields, f.Name)
		}
	}
	return fields
}

// Normalize приводит строку исходных данных к значениям записи.
// Числовые поля сохраняются как float64, если значение разбирается;
// иначе остается исходная строка без пробелов по краям.
func (s *Schema) Normalize(row map[string]string) map[string]any {
	fields := make(map[string]any, len(row))
	for name, raw := range row {
		value := strings.TrimSpace(raw)

		canonical, typ := s.Resolve(name)
		if typ == FieldNumber {
			if n, ok := ParseNumber(value); ok {
				fields[canonical] = n
				continue
			}
		}
		fields[canonical] = value
	}
	return fields
}

// ParseNumber разбирает конечное десятичное число; NaN и бесконечности не допускаются
func ParseNumber(value string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Marshal сериализует схему в YAML
func (s *Schema) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
