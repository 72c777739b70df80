package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datamatic/internal/analysis"
)

// Options controls how a file is turned into a dataset.
type Options struct {
	// Delimiter for CSV. If 0, picked from the extension (',' or '\t').
	Delimiter rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based position when SheetName is empty.
	SheetIndex int
}

// Loader reads one tabular file format into a Dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*analysis.Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported dataset format")

// LoadFile selects a loader based on filename and reads the dataset.
func LoadFile(path string, opt Options) (*analysis.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			ds, err := l.Load(path, opt)
			if err != nil {
				return nil, err
			}
			if ds.Name == "" {
				ds.Name = filepath.Base(path)
			}
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// Supported reports whether some registered loader accepts filename.
func Supported(filename string) bool {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return true
		}
	}
	return false
}

// headerNames trims header cells and makes them unique and non-empty.
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := map[string]int{}
	for i, h := range raw {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// recordRow maps a record onto header names. Short records leave the trailing
// columns absent, which reads as nil; extra fields are ignored.
func recordRow(header, rec []string) analysis.Row {
	row := make(analysis.Row, len(header))
	for j, v := range rec {
		if j >= len(header) {
			break
		}
		row[header[j]] = v
	}
	return row
}

func init() {
	Register(csvLoader{})
	Register(jsonLoader{})
	Register(xlsxLoader{})
}
