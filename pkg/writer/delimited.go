package writer

import (
	"encoding/csv"

	tberrors "github.com/tabops/tabops/pkg/errors"
	"github.com/tabops/tabops/pkg/frame"
)

// DelimitedWriter writes delimited text output (csv, txt).
type DelimitedWriter struct {
	Format Format
}

// Ext returns the output file extension.
func (w DelimitedWriter) Ext() string {
	return string(w.Format)
}

// Write serializes the table as delimited text, header first.
func (w DelimitedWriter) Write(t *frame.Table, path string, opts Options) error {
	f, commit, abort, err := atomicCreate(path)
	if err != nil {
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "create output file")
	}

	cw := csv.NewWriter(f)
	if opts.Separator != 0 {
		cw.Comma = opts.Separator
	}

	if err := cw.Write(t.Columns()); err != nil {
		abort()
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "write header")
	}
	for _, row := range t.Rows() {
		if err := cw.Write(row); err != nil {
			abort()
			return tberrors.Wrap(err, tberrors.CodeWriteFailed, "write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		abort()
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "flush output")
	}
	if err := f.Close(); err != nil {
		abort()
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "close output")
	}
	return commit()
}
