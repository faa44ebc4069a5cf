// Package writer serializes realized tables to output files.
// Writers are selected once per run through the Registry; every writer is
// atomic per file (temp file plus rename) so a failed write never leaves a
// partial output behind.
package writer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tabops/tabops/pkg/frame"
)

// Format identifies an output format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTXT     Format = "txt"
	FormatParquet Format = "parquet"
	FormatXLSX    Format = "xlsx"
)

// ParseFormat normalizes a format identifier.
func ParseFormat(s string) Format {
	return Format(strings.ToLower(s))
}

// Options carries format-specific settings threaded through the registry.
type Options struct {
	// Separator is the field delimiter for delimited output formats.
	Separator rune
}

// Writer serializes one realized table to one target path.
type Writer interface {
	// Write serializes t to path atomically.
	Write(t *frame.Table, path string, opts Options) error

	// Ext returns the file extension for this writer's output.
	Ext() string
}

// atomicCreate opens a temp file next to path, creating parent directories.
// commit renames it into place; abort removes it.
func atomicCreate(path string) (f *os.File, commit func() error, abort func(), err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, nil, err
	}

	tempPath := path + ".tmp." + uuid.NewString()
	f, err = os.Create(tempPath)
	if err != nil {
		return nil, nil, nil, err
	}

	commit = func() error {
		if err := os.Rename(tempPath, path); err != nil {
			os.Remove(tempPath)
			return err
		}
		return nil
	}
	abort = func() {
		f.Close()
		os.Remove(tempPath)
	}
	return f, commit, abort, nil
}
