// Package count builds line-count reports for data directories. The report
// is a realized table (file, dir, parent, file_count, file_len) that is
// written as a spreadsheet through the writer registry.
package count

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tabops/tabops/pkg/frame"
	"github.com/tabops/tabops/pkg/listing"
	"github.com/tabops/tabops/pkg/writer"
)

// Options configures a counting run.
type Options struct {
	// Ext filters the files counted (extension without dot).
	Ext string

	// HasHeader subtracts one line per non-empty file.
	HasHeader bool

	// Group aggregates by (parent, file) instead of one row per
	// (file, dir, parent) key.
	Group bool

	// SliceStart/SliceEnd cut the uppercased file stem before grouping,
	// so numbered exports (REGION_001, REGION_002) aggregate under one
	// name. SliceEnd 0 means no end cut.
	SliceStart int
	SliceEnd   int
}

type key struct {
	file   string
	dir    string
	parent string
}

type totals struct {
	files int
	lines int
}

// Dir walks root recursively, counts lines in each matching file, and
// returns the aggregated report table. Files that cannot be read are skipped
// and reported via the returned skip list rather than failing the run.
func Dir(root string, opts Options) (*frame.Table, []string, error) {
	files, err := listing.Walk(root, opts.Ext)
	if err != nil {
		return nil, nil, err
	}

	agg := make(map[key]*totals)
	var order []key
	var skipped []string

	for _, path := range files {
		lines, err := countLines(path, opts.HasHeader)
		if err != nil {
			skipped = append(skipped, path)
			continue
		}

		k := key{
			file:   sliceName(path, opts.SliceStart, opts.SliceEnd),
			dir:    filepath.Base(filepath.Dir(filepath.Dir(path))),
			parent: filepath.Base(filepath.Dir(path)),
		}
		if opts.Group {
			k.dir = ""
		}

		t, ok := agg[k]
		if !ok {
			t = &totals{}
			agg[k] = t
			order = append(order, k)
		}
		t.files++
		t.lines += lines
	}

	cols := []string{"file", "dir", "parent", "file_count", "file_len"}
	rows := make([][]string, 0, len(order))
	for _, k := range order {
		t := agg[k]
		rows = append(rows, []string{
			k.file,
			k.dir,
			k.parent,
			fmt.Sprintf("%d", t.files),
			fmt.Sprintf("%d", t.lines),
		})
	}
	return frame.NewTable(cols, rows), skipped, nil
}

// ReportPath returns the spreadsheet path for a counted directory.
func ReportPath(root string) string {
	return filepath.Join(root, "file_count_"+filepath.Base(root)+".xlsx")
}

// WriteReport writes the report table as a spreadsheet.
func WriteReport(t *frame.Table, path string) error {
	w, err := writer.Get(writer.FormatXLSX)
	if err != nil {
		return err
	}
	return w.Write(t, path, writer.Options{})
}

// countLines counts the lines of a text file, with the same charset fallback
// used by the tabular scanners.
func countLines(path string, hasHeader bool) (int, error) {
	r, cleanup, err := frame.OpenText(path)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	n := 0
	for sc.Scan() {
		n++
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}

	if hasHeader && n > 0 {
		n--
	}
	return n, nil
}

// sliceName uppercases the file stem and applies the configured cut.
func sliceName(path string, start, end int) string {
	name := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if start < 0 {
		start = 0
	}
	if start > len(name) {
		start = len(name)
	}
	if end <= 0 || end > len(name) {
		end = len(name)
	}
	if start > end {
		start = end
	}
	return name[start:end]
}
