package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "seed", "schema"}, names)
}

func TestSchemaCmd(t *testing.T) {
	t.Setenv("APP_DATA_DIR", t.TempDir())
	t.Setenv("SCHEMA_PATH", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"schema"})

	require.NoError(t, root.Execute())

	var doc struct {
		Fields []struct {
			Name       string `yaml:"name"`
			Type       string `yaml:"type"`
			Searchable bool   `yaml:"searchable"`
		} `yaml:"fields"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	require.NotEmpty(t, doc.Fields)
	assert.Equal(t, "Brand", doc.Fields[0].Name)
	assert.True(t, doc.Fields[0].Searchable)
}

func TestSeedCmd_MemoryStore(t *testing.T) {
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "cars.csv")
	require.NoError(t, os.WriteFile(seedPath, []byte("Brand,Model,Range_Km\nTesla,Model Y,505\nKia,e-Niro,370\n"), 0o644))

	t.Setenv("APP_DATA_DIR", dir)
	t.Setenv("DB_DSN", "memory")
	t.Setenv("SEED_SOURCE", seedPath)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"seed"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "inserted 2 records\n", out.String())
}
