// Package frame implements a small deferred query engine over tabular files.
// A LazyFrame describes a pipeline of row transformations bound to a source;
// no I/O happens until Scan or Collect forces evaluation. Every value is
// uninterpreted text and an empty string is treated as null, which keeps
// mixed-quality inputs from being coerced into wrong types.
package frame

import (
	"fmt"
)

// LazyFrame is an immutable description of a tabular computation.
// Transformations never mutate the receiver; each returns a new frame
// sharing the source and extending the op chain.
type LazyFrame struct {
	src source
	ops []op
}

// source yields rows for evaluation. columns must be cheap: it may read a
// header or file metadata but never the data rows.
type source interface {
	columns() ([]string, error)
	scan(fn func(row []string) error) error
	name() string
}

// op is one bound-late transformation step.
type op interface {
	// columnsAfter reports the output column set given the input one.
	columnsAfter(cols []string) ([]string, error)
	// bind resolves column indices against the input column set and
	// returns the per-row transform. keep=false drops the row.
	bind(cols []string) (func(row []string) (out []string, keep bool), error)
}

func newFrame(src source) *LazyFrame {
	return &LazyFrame{src: src}
}

// Name returns the source identifier, typically the file path.
func (f *LazyFrame) Name() string {
	return f.src.name()
}

// Columns returns the declared column names after all queued projections.
// This inspects only the source header plus the op chain; no rows are read.
func (f *LazyFrame) Columns() ([]string, error) {
	cols, err := f.src.columns()
	if err != nil {
		return nil, err
	}
	for _, o := range f.ops {
		cols, err = o.columnsAfter(cols)
		if err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// HasColumn reports whether the named column is present.
func (f *LazyFrame) HasColumn(name string) (bool, error) {
	cols, err := f.Columns()
	if err != nil {
		return false, err
	}
	for _, c := range cols {
		if c == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *LazyFrame) with(o op) *LazyFrame {
	ops := make([]op, len(f.ops)+1)
	copy(ops, f.ops)
	ops[len(f.ops)] = o
	return &LazyFrame{src: f.src, ops: ops}
}

// FillNull replaces null values in col with sentinel.
func (f *LazyFrame) FillNull(col, sentinel string) *LazyFrame {
	return f.with(fillNullOp{col: col, sentinel: sentinel})
}

// DropNull filters out rows whose value in col is null.
func (f *LazyFrame) DropNull(col string) *LazyFrame {
	return f.with(dropNullOp{col: col})
}

// FilterEq keeps only rows whose value in col equals value.
func (f *LazyFrame) FilterEq(col, value string) *LazyFrame {
	return f.with(filterEqOp{col: col, value: value})
}

// Drop removes the named columns.
func (f *LazyFrame) Drop(cols ...string) *LazyFrame {
	return f.with(dropOp{cols: cols})
}

// Select keeps only the named columns, in the given order.
func (f *LazyFrame) Select(cols ...string) *LazyFrame {
	return f.with(selectOp{cols: cols})
}

// Scan forces evaluation, streaming each output row through fn.
// Rows are only valid for the duration of the callback.
func (f *LazyFrame) Scan(fn func(row []string) error) error {
	cols, err := f.src.columns()
	if err != nil {
		return err
	}

	fns := make([]func([]string) ([]string, bool), 0, len(f.ops))
	for _, o := range f.ops {
		step, err := o.bind(cols)
		if err != nil {
			return err
		}
		fns = append(fns, step)
		if cols, err = o.columnsAfter(cols); err != nil {
			return err
		}
	}

	return f.src.scan(func(row []string) error {
		for _, step := range fns {
			out, keep := step(row)
			if !keep {
				return nil
			}
			row = out
		}
		return fn(row)
	})
}

// Collect forces evaluation and materializes the result.
func (f *LazyFrame) Collect() (*Table, error) {
	cols, err := f.Columns()
	if err != nil {
		return nil, err
	}
	t := &Table{cols: cols}
	err = f.Scan(func(row []string) error {
		t.rows = append(t.rows, append([]string(nil), row...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Cache collects the frame once and returns a new frame over the in-memory
// result. Downstream filtered evaluations then cost no further source I/O.
func (f *LazyFrame) Cache() (*LazyFrame, error) {
	t, err := f.Collect()
	if err != nil {
		return nil, err
	}
	return FromTableNamed(t, f.src.name()), nil
}

// --- ops ---

func columnIndex(cols []string, name string) (int, error) {
	for i, c := range cols {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found in %v", name, cols)
}

type fillNullOp struct {
	col      string
	sentinel string
}

func (o fillNullOp) columnsAfter(cols []string) ([]string, error) {
	if _, err := columnIndex(cols, o.col); err != nil {
		return nil, err
	}
	return cols, nil
}

func (o fillNullOp) bind(cols []string) (func([]string) ([]string, bool), error) {
	idx, err := columnIndex(cols, o.col)
	if err != nil {
		return nil, err
	}
	return func(row []string) ([]string, bool) {
		if row[idx] == "" {
			row[idx] = o.sentinel
		}
		return row, true
	}, nil
}

type dropNullOp struct {
	col string
}

func (o dropNullOp) columnsAfter(cols []string) ([]string, error) {
	if _, err := columnIndex(cols, o.col); err != nil {
		return nil, err
	}
	return cols, nil
}

func (o dropNullOp) bind(cols []string) (func([]string) ([]string, bool), error) {
	idx, err := columnIndex(cols, o.col)
	if err != nil {
		return nil, err
	}
	return func(row []string) ([]string, bool) {
		return row, row[idx] != ""
	}, nil
}

type filterEqOp struct {
	col   string
	value string
}

func (o filterEqOp) columnsAfter(cols []string) ([]string, error) {
	if _, err := columnIndex(cols, o.col); err != nil {
		return nil, err
	}
	return cols, nil
}

func (o filterEqOp) bind(cols []string) (func([]string) ([]string, bool), error) {
	idx, err := columnIndex(cols, o.col)
	if err != nil {
		return nil, err
	}
	return func(row []string) ([]string, bool) {
		return row, row[idx] == o.value
	}, nil
}

type dropOp struct {
	cols []string
}

func (o dropOp) columnsAfter(cols []string) ([]string, error) {
	dropped := make(map[string]bool, len(o.cols))
	for _, c := range o.cols {
		if _, err := columnIndex(cols, c); err != nil {
			return nil, err
		}
		dropped[c] = true
	}
	out := make([]string, 0, len(cols)-len(o.cols))
	for _, c := range cols {
		if !dropped[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (o dropOp) bind(cols []string) (func([]string) ([]string, bool), error) {
	dropped := make(map[int]bool, len(o.cols))
	for _, c := range o.cols {
		idx, err := columnIndex(cols, c)
		if err != nil {
			return nil, err
		}
		dropped[idx] = true
	}
	width := len(cols) - len(dropped)
	return func(row []string) ([]string, bool) {
		out := make([]string, 0, width)
		for i, v := range row {
			if !dropped[i] {
				out = append(out, v)
			}
		}
		return out, true
	}, nil
}

type selectOp struct {
	cols []string
}

func (o selectOp) columnsAfter(cols []string) ([]string, error) {
	for _, c := range o.cols {
		if _, err := columnIndex(cols, c); err != nil {
			return nil, err
		}
	}
	return append([]string(nil), o.cols...), nil
}

func (o selectOp) bind(cols []string) (func([]string) ([]string, bool), error) {
	idxs := make([]int, len(o.cols))
	for i, c := range o.cols {
		idx, err := columnIndex(cols, c)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}
	return func(row []string) ([]string, bool) {
		out := make([]string, len(idxs))
		for i, idx := range idxs {
			out[i] = row[idx]
		}
		return out, true
	}, nil
}
