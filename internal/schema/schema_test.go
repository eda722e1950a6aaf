package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()

	f, ok := s.Lookup("range_km")
	require.True(t, ok)
	assert.Equal(t, "Range_Km", f.Name)
	assert.Equal(t, FieldNumber, f.Type)

	f, ok = s.Lookup("EFFICIENCY_WHKM")
	require.True(t, ok)
	assert.Equal(t, FieldNumber, f.Type)

	f, ok = s.Lookup("brand")
	require.True(t, ok)
	assert.Equal(t, FieldText, f.Type)

	assert.Equal(t, []string{"Brand", "Model"}, s.SearchFields())
}

func TestResolve(t *testing.T) {
	s := Default()

	name, typ := s.Resolve("  range_km ")
	assert.Equal(t, "Range_Km", name)
	assert.Equal(t, FieldNumber, typ)

	// числовые только Range_Km и Efficiency_WhKm
	for _, f := range []string{"AccelSec", "TopSpeed_KmH", "FastCharge_KmH", "Seats", "PriceEuro"} {
		_, typ = s.Resolve(f)
		assert.Equal(t, FieldText, typ, f)
	}

	name, typ = s.Resolve("Color")
	assert.Equal(t, "Color", name)
	assert.Equal(t, FieldText, typ)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "type defaults to text",
			input: "fields:\n  - name: Brand\n",
		},
		{
			name:    "empty field list",
			input:   "fields: []\n",
			wantErr: true,
		},
		{
			name:    "unknown type",
			input:   "fields:\n  - name: Brand\n    type: date\n",
			wantErr: true,
		},
		{
			name:    "duplicate name ignoring case",
			input:   "fields:\n  - name: Brand\n  - name: BRAND\n",
			wantErr: true,
		},
		{
			name:    "missing name",
			input:   "fields:\n  - type: number\n",
			wantErr: true,
		},
		{
			name:    "broken yaml",
			input:   "fields: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			f, ok := s.Lookup("brand")
			require.True(t, ok)
			assert.Equal(t, FieldText, f.Type)
		})
	}
}

func TestLoad(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Fields)

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  - name: Price\n    type: number\n"), 0o644))

	s, err = Load(path)
	require.NoError(t, err)
	f, ok := s.Lookup("price")
	require.True(t, ok)
	assert.Equal(t, FieldNumber, f.Type)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	s := Default()

	fields := s.Normalize(map[string]string{
		"Brand":           "Tesla ",
		"range_km":        " 450",
		"FastCharge_KmH":  "-",
		"Seats":           " 5",
		"Efficiency_WhKm": "NaN",
		"Color":           " red",
	})

	assert.Equal(t, map[string]any{
		"Brand":           "Tesla",
		"Range_Km":        float64(450),
		"FastCharge_KmH":  "-",
		"Seats":           "5",
		"Efficiency_WhKm": "NaN",
		"Color":           "red",
	}, fields)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default().Fields, s.Fields)
}
