package frame

// Table is a realized query result: named columns plus row-major values.
type Table struct {
	cols []string
	rows [][]string
}

// NewTable builds a table from column names and row-major data.
func NewTable(cols []string, rows [][]string) *Table {
	return &Table{
		cols: append([]string(nil), cols...),
		rows: rows,
	}
}

// Columns returns the column names.
func (t *Table) Columns() []string {
	return t.cols
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Rows returns the row-major data. Callers must not mutate it.
func (t *Table) Rows() [][]string {
	return t.rows
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns all values of the named column, or nil if absent.
func (t *Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	vals := make([]string, len(t.rows))
	for i, row := range t.rows {
		vals[i] = row[idx]
	}
	return vals
}

// tableSource adapts a realized table back into a frame source so filtered
// views can evaluate against memory instead of re-reading a file.
type tableSource struct {
	t  *Table
	id string
}

func (s tableSource) columns() ([]string, error) {
	return s.t.cols, nil
}

func (s tableSource) scan(fn func(row []string) error) error {
	for _, row := range s.t.rows {
		// Copy so downstream in-place ops (fill) cannot corrupt the table.
		if err := fn(append([]string(nil), row...)); err != nil {
			return err
		}
	}
	return nil
}

func (s tableSource) name() string {
	return s.id
}

// FromTable wraps a realized table as a new lazy frame.
func FromTable(t *Table) *LazyFrame {
	return FromTableNamed(t, "memory")
}

// FromTableNamed wraps a realized table, keeping the origin name for messages.
func FromTableNamed(t *Table, name string) *LazyFrame {
	return newFrame(tableSource{t: t, id: name})
}
