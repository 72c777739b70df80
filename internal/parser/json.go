package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datamatic/internal/analysis"
)

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonLoader) Load(path string, opt Options) (*analysis.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()
	return ReadJSON(f, filepath.Base(path), opt.MaxRows)
}

// ReadJSON decodes an array of objects. Numbers keep their text form so strict
// numeric parsing sees exactly what was written; nested values become JSON text.
func ReadJSON(r io.Reader, name string, maxRows int) (*analysis.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return &analysis.Dataset{Name: name}, nil
		}
		return nil, fmt.Errorf("decode json rows: %w", err)
	}
	if maxRows > 0 && len(raw) > maxRows {
		raw = raw[:maxRows]
	}
	rows := make([]analysis.Row, len(raw))
	for i, obj := range raw {
		row := make(analysis.Row, len(obj))
		for k, v := range obj {
			switch v.(type) {
			case map[string]any, []any:
				var buf bytes.Buffer
				enc := json.NewEncoder(&buf)
				enc.SetEscapeHTML(false)
				if err := enc.Encode(v); err != nil {
					return nil, fmt.Errorf("row %d field %q: %w", i+1, k, err)
				}
				row[k] = strings.TrimSpace(buf.String())
			default:
				row[k] = v
			}
		}
		rows[i] = row
	}
	return analysis.NewDataset(name, rows), nil
}
