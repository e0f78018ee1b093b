package loaders

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Skino1337/PyPoE/internal/repository"
)

// ── CSV Directory Loader ───────────────────────────────────
// Reads one <Table>.csv per table. The first row holds column names.

type csvDirLoader struct{}

func init() { repository.RegisterLoader(&csvDirLoader{}) }

func (l *csvDirLoader) Spec() repository.LoaderSpec {
	return repository.LoaderSpec{
		Type:  "csv_dir",
		Label: "CSV Directory",
		ConfigFields: []repository.ConfigField{
			{Key: "path", Label: "Directory", Required: true, Help: "Directory holding one <Table>.csv per table"},
			{Key: "delimiter", Label: "Delimiter", Default: ",", Help: "Column delimiter (default: comma)"},
		},
	}
}

func (l *csvDirLoader) Load(ctx context.Context, cfg repository.LoaderConfig, schema *repository.Schema) (repository.Tables, error) {
	dir := cfg.String("path")
	if dir == "" {
		return nil, fmt.Errorf("path is required")
	}
	files, err := tableFiles(dir, ".csv", schema)
	if err != nil {
		return nil, err
	}

	var comma rune
	if delim := cfg.String("delimiter"); delim != "" {
		comma = rune(delim[0])
	}

	tables := make(repository.Tables, len(files))
	for name, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := readCSVFile(file, comma)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		tables[name] = rows
	}
	return tables, nil
}

func readCSVFile(path string, comma rune) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if comma != 0 {
		reader.Comma = comma
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		data := make(map[string]any, len(headers))
		for j, h := range headers {
			if j < len(rec) {
				data[h] = inferCellValue(rec[j])
			} else {
				data[h] = nil
			}
		}
		rows = append(rows, data)
	}
	return rows, nil
}

// inferCellValue parses a text cell as an integer or float where possible.
// Empty cells are null; everything else stays text.
func inferCellValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if strings.ContainsAny(s, "0123456789") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
