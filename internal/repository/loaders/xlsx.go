package loaders

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Skino1337/PyPoE/internal/repository"
)

// ── XLSX Workbook Loader ───────────────────────────────────
// Each sheet is a table; the first row of a sheet holds column names.

type xlsxLoader struct{}

func init() { repository.RegisterLoader(&xlsxLoader{}) }

func (l *xlsxLoader) Spec() repository.LoaderSpec {
	return repository.LoaderSpec{
		Type:  "xlsx",
		Label: "Excel Workbook",
		ConfigFields: []repository.ConfigField{
			{Key: "path", Label: "Workbook", Required: true, Help: "Path to an .xlsx file with one sheet per table"},
		},
	}
}

func (l *xlsxLoader) Load(ctx context.Context, cfg repository.LoaderConfig, schema *repository.Schema) (repository.Tables, error) {
	path := cfg.String("path")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	tables := make(repository.Tables)
	for _, sheet := range f.GetSheetList() {
		if !wanted(sheet, schema) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		tables[sheet] = sheetRows(rows)
	}
	return tables, nil
}

// sheetRows turns a header row plus data rows into field maps. GetRows
// trims trailing empty cells, so short rows are padded with nulls.
func sheetRows(rows [][]string) []map[string]any {
	if len(rows) == 0 {
		return nil
	}
	headers := rows[0]
	out := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		data := make(map[string]any, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(row) {
				data[h] = inferCellValue(row[j])
			} else {
				data[h] = nil
			}
		}
		out = append(out, data)
	}
	return out
}
