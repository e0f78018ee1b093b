package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Skino1337/PyPoE/internal/repository"
)

// ── JSON File Loader ───────────────────────────────────────
// Reads tables from either a single JSON document ({"Table": [rows...]})
// or a directory holding one <Table>.json array per table.

type jsonFileLoader struct{}

func init() { repository.RegisterLoader(&jsonFileLoader{}) }

func (l *jsonFileLoader) Spec() repository.LoaderSpec {
	return repository.LoaderSpec{
		Type:  "json_file",
		Label: "JSON File",
		ConfigFields: []repository.ConfigField{
			{Key: "path", Label: "Path", Required: true, Help: "JSON document keyed by table name, or a directory of <Table>.json files"},
		},
	}
}

func (l *jsonFileLoader) Load(ctx context.Context, cfg repository.LoaderConfig, schema *repository.Schema) (repository.Tables, error) {
	path := cfg.String("path")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if !info.IsDir() {
		var doc map[string][]map[string]any
		if err := decodeJSONFile(path, &doc); err != nil {
			return nil, err
		}
		return selectTables(repository.Tables(doc), schema), nil
	}

	names, err := tableFiles(path, ".json", schema)
	if err != nil {
		return nil, err
	}
	tables := make(repository.Tables, len(names))
	for name, file := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rows []map[string]any
		if err := decodeJSONFile(file, &rows); err != nil {
			return nil, err
		}
		tables[name] = rows
	}
	return tables, nil
}

func decodeJSONFile(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("parse json %s: %w", filepath.Base(path), err)
	}
	return nil
}

// tableFiles maps table names to files with ext inside dir. With a
// non-empty schema only the declared tables are returned.
func tableFiles(dir, ext string, schema *repository.Schema) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	files := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !wanted(name, schema) {
			continue
		}
		files[name] = filepath.Join(dir, e.Name())
	}
	return files, nil
}

func selectTables(all repository.Tables, schema *repository.Schema) repository.Tables {
	out := make(repository.Tables, len(all))
	for name, rows := range all {
		if wanted(name, schema) {
			out[name] = rows
		}
	}
	return out
}

func wanted(name string, schema *repository.Schema) bool {
	if schema == nil || len(schema.Tables) == 0 {
		return true
	}
	_, ok := schema.Tables[name]
	return ok
}
