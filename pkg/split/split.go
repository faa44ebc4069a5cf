// Package split implements the category-based partition engine: it resolves
// the distinct values of a category column in a tabular file and writes one
// output artifact per value, fanning out writes over a bounded worker pool.
package split

import (
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	tberrors "github.com/tabops/tabops/pkg/errors"
	"github.com/tabops/tabops/pkg/frame"
	"github.com/tabops/tabops/pkg/listing"
	"github.com/tabops/tabops/pkg/writer"
)

// Logger receives the engine's warnings and progress messages. The engine
// never formats output itself beyond the message text.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{}) {}

// Options is the full configuration surface of a split run.
type Options struct {
	// CategoryCol is the column whose distinct values drive partitioning.
	CategoryCol string

	// InputFormat and Separator describe how sources are scanned.
	InputFormat frame.Format
	Separator   rune

	// OutputFormat selects the writer; OutputSeparator applies to delimited
	// output formats.
	OutputFormat    writer.Format
	OutputSeparator rune

	// OutputDir is the root of all written partitions.
	OutputDir string

	// KeepCategoryCol retains the category column in output rows.
	KeepCategoryCol bool

	// MakeDir selects the subdirectory-per-category layout
	// (dir/<category>/<base>.<ext>) instead of the flat layout
	// (dir/<base>_<category>.<ext>).
	MakeDir bool

	// FillNull switches the null policy from Skip to Fill(FillNullValue).
	FillNull      bool
	FillNullValue string

	// Verbose logs the resolved category list before fan-out.
	Verbose bool

	// Workers bounds the per-file worker pool. 0 means available parallelism.
	Workers int

	// Registry overrides the writer registry. nil means the default.
	Registry *writer.Registry

	// Logger receives warnings. nil silences them.
	Logger Logger
}

// Result summarizes one file's split.
type Result struct {
	File       string
	Skipped    bool // schema gate rejected the file
	Categories []string
	Partitions int
}

// Splitter executes split runs. The writer lookup happens once at
// construction so unsupported formats fail before any I/O.
type Splitter struct {
	opts Options
	w    writer.Writer
	log  Logger
}

// New validates the options and resolves the output writer.
func New(opts Options) (*Splitter, error) {
	if opts.CategoryCol == "" {
		return nil, tberrors.New(tberrors.CodeMissingColumn, "category column is required")
	}

	reg := opts.Registry
	if reg == nil {
		reg = writer.DefaultRegistry
	}
	w, err := reg.Get(opts.OutputFormat)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	return &Splitter{opts: opts, w: w, log: log}, nil
}

// SplitFile scans one file and splits it by category.
func (s *Splitter) SplitFile(path string) (*Result, error) {
	lf, err := frame.Scan(path, s.opts.InputFormat, s.opts.Separator)
	if err != nil {
		return nil, err
	}
	base := stem(path)
	return s.SplitFrame(lf, base)
}

// SplitFrame splits an already-opened deferred query. base names the output
// files. The call returns only once every dispatched partition task has
// completed or failed; the first failure wins, in-flight siblings run to
// completion, and already-written partitions are not rolled back.
func (s *Splitter) SplitFrame(lf *frame.LazyFrame, base string) (*Result, error) {
	res := &Result{File: lf.Name()}

	// Schema gate: cheap header inspection, recoverable per file.
	ok, err := lf.HasColumn(s.opts.CategoryCol)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warnf("column %q not found in %s, skipping the file", s.opts.CategoryCol, lf.Name())
		res.Skipped = true
		return res, nil
	}

	// Null policy, applied once and irreversible for this file's run.
	if s.opts.FillNull {
		lf = lf.FillNull(s.opts.CategoryCol, s.opts.FillNullValue)
	} else {
		lf = lf.DropNull(s.opts.CategoryCol)
	}

	// One streaming pass over just the category column.
	intern := NewIntern()
	categories, err := Resolve(lf, s.opts.CategoryCol, intern)
	if err != nil {
		return nil, err
	}
	res.Categories = categories

	if s.opts.Verbose {
		s.log.Infof("splitting %s into %v", lf.Name(), categories)
	}
	if len(categories) == 0 {
		s.log.Warnf("no categories found in %s after null handling", lf.Name())
		return res, nil
	}

	// Derive every target path up front; collisions fail the file before
	// any partition is written.
	tasks, err := planTasks(s.opts, base, categories, s.w.Ext(), lf.Name())
	if err != nil {
		return nil, err
	}

	// Materialize the post-null-policy frame once so the N filtered
	// evaluations below run against memory, not N re-reads of the source.
	cached, err := lf.Cache()
	if err != nil {
		return nil, err
	}

	wopts := writer.Options{Separator: s.opts.OutputSeparator}

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			view := cached.FilterEq(s.opts.CategoryCol, task.category)
			if !s.opts.KeepCategoryCol {
				view = view.Drop(s.opts.CategoryCol)
			}
			t, err := view.Collect()
			if err != nil {
				return tberrors.PartitionWrite(lf.Name(), task.category, err)
			}
			if err := s.w.Write(t, task.path, wopts); err != nil {
				return tberrors.PartitionWrite(lf.Name(), task.category, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	res.Partitions = len(tasks)
	return res, nil
}

// SplitDir splits every matching file under dir sequentially. Recoverable
// per-file conditions are logged and the batch continues; the combined error
// of failed files is returned at the end. onFile, if non-nil, observes each
// file's outcome.
func (s *Splitter) SplitDir(dir, ext string, onFile func(path string, res *Result, err error)) error {
	files, err := listing.Files(dir, ext)
	if err != nil {
		return err
	}

	var failed tberrors.MultiError
	for _, path := range files {
		res, err := s.SplitFile(path)
		if err != nil {
			s.log.Warnf("failed to split %s: %v", path, err)
			failed.Add(err)
		}
		if onFile != nil {
			onFile(path, res, err)
		}
	}
	return failed.Combined()
}

// stem returns the file name without directory or extension.
func stem(path string) string {
	name := filepath.Base(path)
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
