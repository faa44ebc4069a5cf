package frame

import (
	"fmt"
	"os"
	"strings"

	tberrors "github.com/tabops/tabops/pkg/errors"
)

// Format identifies an input file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTXT     Format = "txt"
	FormatParquet Format = "parquet"
)

// ParseFormat normalizes a format tag.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTXT:
		return FormatTXT, nil
	case FormatParquet:
		return FormatParquet, nil
	}
	return "", fmt.Errorf("unknown input format %q", s)
}

// Delimited reports whether the format is a delimited text format.
func (f Format) Delimited() bool {
	return f == FormatCSV || f == FormatTXT
}

// Scan opens a file as a deferred query. All columns are surfaced as
// uninterpreted text. The separator applies to delimited formats only.
// No data rows are read until the frame is evaluated.
func Scan(path string, format Format, sep rune) (*LazyFrame, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, tberrors.UnreadableSource(path, err)
	}
	switch format {
	case FormatCSV, FormatTXT:
		return ScanDelimited(path, sep), nil
	case FormatParquet:
		return ScanParquet(path), nil
	}
	return nil, tberrors.UnreadableSource(path, fmt.Errorf("unrecognized format %q", format))
}
