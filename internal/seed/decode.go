package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"

	"evdash/internal/model"
)

// Row строка исходных данных: имя колонки -> значение ячейки
type Row map[string]string

// Decode разбирает содержимое источника; формат определяется по имени:
// .gz распаковывается, .xlsx читается как таблица Excel, остальное как CSV
func Decode(name string, r io.Reader) ([]Row, error) {
	lower := strings.ToLower(name)

	switch {
	case strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		return Decode(name[:len(name)-len(".gz")], gz)
	case strings.HasSuffix(lower, ".xlsx"):
		return decodeXLSX(r)
	default:
		return decodeCSV(r)
	}
}

func decodeCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return toRows(records)
}

func decodeXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in xlsx file")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return toRows(records)
}

// toRows сопоставляет ячейки с заголовками первой строки.
// Недостающие ячейки означают отсутствие поля, лишние отбрасываются.
func toRows(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, errors.New("seed data has no header row")
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.TrimSpace(name)
		if name == model.IDKey {
			name = ""
		}
		header[i] = name
	}

	rows := make([]Row, 0, len(records)-1)
	for _, cells := range records[1:] {
		if blank(cells) {
			continue
		}

		row := make(Row, len(header))
		for i, value := range cells {
			if i >= len(header) {
				break
			}
			if header[i] == "" {
				continue
			}
			row[header[i]] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
