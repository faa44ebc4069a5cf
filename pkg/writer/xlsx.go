package writer

import (
	"github.com/xuri/excelize/v2"

	tberrors "github.com/tabops/tabops/pkg/errors"
	"github.com/tabops/tabops/pkg/frame"
)

// XLSXWriter writes spreadsheet output via excelize.
type XLSXWriter struct{}

// Ext returns the output file extension.
func (w XLSXWriter) Ext() string {
	return "xlsx"
}

// Write serializes the table to a single-sheet workbook using the streaming
// writer, header first. Note: workbooks embed creation timestamps, so repeated
// runs produce equal content but not byte-identical files.
func (w XLSXWriter) Write(t *frame.Table, path string, opts Options) error {
	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetName(0)
	sw, err := book.NewStreamWriter(sheet)
	if err != nil {
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "create stream writer")
	}

	if err := w.setRow(sw, 1, t.Columns()); err != nil {
		return err
	}
	for i, row := range t.Rows() {
		if err := w.setRow(sw, i+2, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "flush sheet")
	}

	f, commit, abort, err := atomicCreate(path)
	if err != nil {
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "create output file")
	}
	if _, err := book.WriteTo(f); err != nil {
		abort()
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "write workbook")
	}
	if err := f.Close(); err != nil {
		abort()
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "close output")
	}
	return commit()
}

func (w XLSXWriter) setRow(sw *excelize.StreamWriter, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "resolve cell")
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := sw.SetRow(cell, cells); err != nil {
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "write sheet row")
	}
	return nil
}
