package frame

import (
	"context"
	"os"

	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet/file"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	tberrors "github.com/tabops/tabops/pkg/errors"
)

const parquetBatchSize = 8192

// parquetSource lazily reads a parquet file through Arrow.
type parquetSource struct {
	path string
}

// ScanParquet returns a deferred query over a parquet file. Values of every
// physical type are surfaced as their string rendering; nulls become empty
// strings.
func ScanParquet(path string) *LazyFrame {
	return newFrame(parquetSource{path: path})
}

func (s parquetSource) name() string {
	return s.path
}

func (s parquetSource) open() (*os.File, *file.Reader, *pqarrow.FileReader, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, nil, tberrors.UnreadableSource(s.path, err)
	}

	pqReader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, nil, nil, tberrors.UnreadableSource(s.path, err)
	}

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{
		BatchSize: parquetBatchSize,
	}, memory.DefaultAllocator)
	if err != nil {
		pqReader.Close()
		f.Close()
		return nil, nil, nil, tberrors.UnreadableSource(s.path, err)
	}

	return f, pqReader, arrowReader, nil
}

func (s parquetSource) columns() ([]string, error) {
	f, pqReader, arrowReader, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defer pqReader.Close()

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, tberrors.UnreadableSource(s.path, err)
	}

	cols := make([]string, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		cols[i] = schema.Field(i).Name
	}
	return cols, nil
}

func (s parquetSource) scan(fn func(row []string) error) error {
	f, pqReader, arrowReader, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()
	defer pqReader.Close()

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return tberrors.UnreadableSource(s.path, err)
	}
	defer table.Release()

	tableReader := array.NewTableReader(table, parquetBatchSize)
	defer tableReader.Release()

	width := int(table.NumCols())
	row := make([]string, width)

	for tableReader.Next() {
		rec := tableReader.Record()
		for i := 0; i < int(rec.NumRows()); i++ {
			for c := 0; c < width; c++ {
				col := rec.Column(c)
				if col.IsNull(i) {
					row[c] = ""
				} else {
					row[c] = col.ValueStr(i)
				}
			}
			if err := fn(row); err != nil {
				return err
			}
		}
	}
	return nil
}
