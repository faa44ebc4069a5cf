package writer

import (
	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	tberrors "github.com/tabops/tabops/pkg/errors"
	"github.com/tabops/tabops/pkg/frame"
)

const parquetChunkRows = 8192

// ParquetWriter writes parquet output through Arrow. All columns are written
// as UTF-8 strings to mirror the uninterpreted-text data model.
type ParquetWriter struct{}

// Ext returns the output file extension.
func (w ParquetWriter) Ext() string {
	return "parquet"
}

// Write serializes the table as snappy-compressed parquet.
func (w ParquetWriter) Write(t *frame.Table, path string, opts Options) error {
	fields := make([]arrow.Field, len(t.Columns()))
	for i, name := range t.Columns() {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String}
	}
	schema := arrow.NewSchema(fields, nil)

	f, commit, abort, err := atomicCreate(path)
	if err != nil {
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "create output file")
	}

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithCreatedBy("tabops"),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	pw, err := pqarrow.NewFileWriter(schema, f, writerProps, arrowProps)
	if err != nil {
		abort()
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "create parquet writer")
	}

	bldr := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer bldr.Release()

	rows := t.Rows()
	for start := 0; start < len(rows); start += parquetChunkRows {
		end := start + parquetChunkRows
		if end > len(rows) {
			end = len(rows)
		}
		for _, row := range rows[start:end] {
			for c := range fields {
				bldr.Field(c).(*array.StringBuilder).Append(row[c])
			}
		}
		rec := bldr.NewRecord()
		err := pw.Write(rec)
		rec.Release()
		if err != nil {
			pw.Close()
			abort()
			return tberrors.Wrap(err, tberrors.CodeWriteFailed, "write parquet batch")
		}
	}

	// Close finalizes the footer and closes the temp file.
	if err := pw.Close(); err != nil {
		abort()
		return tberrors.Wrap(err, tberrors.CodeWriteFailed, "close parquet writer")
	}
	return commit()
}
