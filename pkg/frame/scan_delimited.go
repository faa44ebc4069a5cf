package frame

import (
	"encoding/csv"
	"io"

	tberrors "github.com/tabops/tabops/pkg/errors"
)

// delimitedSource lazily reads a header-bearing delimited text file.
type delimitedSource struct {
	path string
	sep  rune
}

// ScanDelimited returns a deferred query over a delimited text file.
// The first row is the header; data rows shorter than the header are padded
// with nulls and longer rows are truncated to the header width.
func ScanDelimited(path string, sep rune) *LazyFrame {
	if sep == 0 {
		sep = ','
	}
	return newFrame(delimitedSource{path: path, sep: sep})
}

func (s delimitedSource) name() string {
	return s.path
}

func (s delimitedSource) open() (*csv.Reader, func() error, error) {
	r, cleanup, err := OpenText(s.path)
	if err != nil {
		return nil, nil, tberrors.UnreadableSource(s.path, err)
	}
	cr := csv.NewReader(r)
	cr.Comma = s.sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr, cleanup, nil
}

func (s delimitedSource) columns() ([]string, error) {
	cr, cleanup, err := s.open()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	header, err := cr.Read()
	if err != nil {
		return nil, tberrors.UnreadableSource(s.path, err)
	}
	return header, nil
}

func (s delimitedSource) scan(fn func(row []string) error) error {
	cr, cleanup, err := s.open()
	if err != nil {
		return err
	}
	defer cleanup()

	header, err := cr.Read()
	if err != nil {
		return tberrors.UnreadableSource(s.path, err)
	}
	width := len(header)

	row := make([]string, width)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return tberrors.UnreadableSource(s.path, err)
		}

		// Normalize ragged rows to the header width.
		for i := 0; i < width; i++ {
			if i < len(rec) {
				row[i] = rec[i]
			} else {
				row[i] = ""
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
