package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datamatic/internal/analysis"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Load reads the selected sheet. If SheetName is empty and SheetIndex <= 0 the
// first sheet is used.
func (xlsxLoader) Load(path string, opt Options) (*analysis.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f.GetSheetList(), opt.SheetName, opt.SheetIndex, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	ds := &analysis.Dataset{Name: fmt.Sprintf("%s (sheet: %s)", filepath.Base(path), sheet)}
	for rows.Next() {
		rec, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %q row: %w", sheet, err)
		}
		if ds.Columns == nil {
			if len(rec) == 0 {
				continue
			}
			ds.Columns = headerNames(rec)
			continue
		}
		if opt.MaxRows > 0 && len(ds.Rows) >= opt.MaxRows {
			break
		}
		ds.Rows = append(ds.Rows, recordRow(ds.Columns, rec))
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("iterate sheet %q: %w", sheet, err)
	}
	return ds, nil
}

func resolveSheet(sheets []string, name string, index int, file string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook %s has no sheets", file)
	}
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			name, file, strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range: workbook '%s' has %d sheets", index, file, len(sheets))
	}
	return sheets[index-1], nil
}
