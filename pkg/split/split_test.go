package split

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	tberrors "github.com/tabops/tabops/pkg/errors"
	"github.com/tabops/tabops/pkg/frame"
	"github.com/tabops/tabops/pkg/writer"
)

type recordingLogger struct {
	infos []string
	warns []string
}

func (l *recordingLogger) Infof(format string, args ...interface{}) {
	l.infos = append(l.infos, format)
}

func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.warns = append(l.warns, format)
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func readCSV(t *testing.T, path string) (cols []string, rows [][]string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if len(all) == 0 {
		t.Fatalf("%s is empty", path)
	}
	return all[0], all[1:]
}

func newTestSplitter(t *testing.T, opts Options) *Splitter {
	t.Helper()
	if opts.CategoryCol == "" {
		opts.CategoryCol = "region"
	}
	if opts.InputFormat == "" {
		opts.InputFormat = frame.FormatCSV
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = writer.FormatCSV
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

const fixture = "region,val\nEU,1\nUS,2\n,3\nEU,4\n"

func TestSplit_SkipNullPolicy(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "sales.csv", fixture)

	s := newTestSplitter(t, Options{OutputDir: out})
	res, err := s.SplitFile(path)
	if err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}

	if got := res.Categories; len(got) != 2 || got[0] != "EU" || got[1] != "US" {
		t.Errorf("unexpected categories: %v", got)
	}
	if res.Partitions != 2 {
		t.Errorf("expected 2 partitions, got %d", res.Partitions)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 output files, got %d", len(entries))
	}

	_, euRows := readCSV(t, filepath.Join(out, "sales_EU.csv"))
	_, usRows := readCSV(t, filepath.Join(out, "sales_US.csv"))
	if len(euRows) != 2 || len(usRows) != 1 {
		t.Errorf("unexpected row counts: EU=%d US=%d", len(euRows), len(usRows))
	}

	// The null row appears nowhere.
	for _, rows := range [][][]string{euRows, usRows} {
		for _, row := range rows {
			if row[0] == "3" {
				t.Error("null-category row leaked into a partition")
			}
		}
	}
}

func TestSplit_FillNullPolicy(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "sales.csv", fixture)

	s := newTestSplitter(t, Options{
		OutputDir:     out,
		FillNull:      true,
		FillNullValue: "OTHER",
	})
	res, err := s.SplitFile(path)
	if err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}

	if res.Partitions != 3 {
		t.Fatalf("expected 3 partitions, got %d", res.Partitions)
	}
	_, otherRows := readCSV(t, filepath.Join(out, "sales_OTHER.csv"))
	if len(otherRows) != 1 || otherRows[0][0] != "3" {
		t.Errorf("unexpected OTHER partition: %v", otherRows)
	}
}

func TestSplit_CompletenessAndDisjointness(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "big.csv",
		"region,val\nEU,1\nUS,2\nEU,3\nAPAC,4\nUS,5\nEU,6\n")

	s := newTestSplitter(t, Options{OutputDir: out, KeepCategoryCol: true})
	res, err := s.SplitFile(path)
	if err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}

	var union []string
	seen := make(map[string]bool)
	for _, cat := range res.Categories {
		_, rows := readCSV(t, filepath.Join(out, "big_"+cat+".csv"))
		for _, row := range rows {
			if row[0] != cat {
				t.Errorf("row %v in wrong partition %s", row, cat)
			}
			key := strings.Join(row, ",")
			if seen[key] {
				t.Errorf("row %v duplicated across partitions", row)
			}
			seen[key] = true
			union = append(union, row[1])
		}
	}

	sort.Strings(union)
	want := []string{"1", "2", "3", "4", "5", "6"}
	if len(union) != len(want) {
		t.Fatalf("expected %d rows in union, got %d", len(want), len(union))
	}
	for i, v := range want {
		if union[i] != v {
			t.Errorf("union[%d] = %q, want %q", i, union[i], v)
		}
	}
}

func TestSplit_DropsCategoryColumnByDefault(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "sales.csv", "region,val\nEU,1\n")

	s := newTestSplitter(t, Options{OutputDir: out})
	if _, err := s.SplitFile(path); err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}

	cols, rows := readCSV(t, filepath.Join(out, "sales_EU.csv"))
	if len(cols) != 1 || cols[0] != "val" {
		t.Errorf("category column not dropped: %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "1" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestSplit_MakeDirLayout(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "sales.csv", "region,val\nEU,1\nUS,2\n")

	s := newTestSplitter(t, Options{OutputDir: out, MakeDir: true})
	if _, err := s.SplitFile(path); err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}

	for _, cat := range []string{"EU", "US"} {
		if _, err := os.Stat(filepath.Join(out, cat, "sales.csv")); err != nil {
			t.Errorf("missing %s/sales.csv: %v", cat, err)
		}
	}
}

func TestSplit_SchemaGate(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "nocol.csv", "a,b\n1,2\n")

	log := &recordingLogger{}
	s := newTestSplitter(t, Options{OutputDir: out, Logger: log})

	res, err := s.SplitFile(path)
	if err != nil {
		t.Fatalf("schema gate must be recoverable, got %v", err)
	}
	if !res.Skipped {
		t.Error("expected file to be skipped")
	}
	if len(log.warns) == 0 {
		t.Error("expected a warning for the missing column")
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("expected zero output files, got %d", len(entries))
	}
}

func TestSplit_EmptyAfterNullFiltering(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "allnull.csv", "region,val\n,1\n,2\n")

	log := &recordingLogger{}
	s := newTestSplitter(t, Options{OutputDir: out, Logger: log})

	res, err := s.SplitFile(path)
	if err != nil {
		t.Fatalf("empty category set must not be an error, got %v", err)
	}
	if len(res.Categories) != 0 || res.Partitions != 0 {
		t.Errorf("expected no partitions, got %+v", res)
	}
}

func TestSplit_OutputSeparator(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "sales.csv", "region,val\nEU,1\n")

	s := newTestSplitter(t, Options{
		OutputDir:       out,
		OutputFormat:    writer.FormatTXT,
		OutputSeparator: ';',
	})
	if _, err := s.SplitFile(path); err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "sales_EU.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "val") || strings.Contains(string(data), ",") {
		t.Errorf("unexpected delimited output: %q", data)
	}
}

func TestSplit_PathCollisionFailsFast(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "sales.csv", "region,val\nEU,1\neu,2\n")

	s := newTestSplitter(t, Options{OutputDir: out})
	_, err := s.SplitFile(path)
	if !tberrors.IsCode(err, tberrors.CodePathCollision) {
		t.Fatalf("expected path collision error, got %v", err)
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("collision must produce zero output files, got %d", len(entries))
	}
}

func TestSplit_UnsafeCategoryValue(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "sales.csv", "region,val\n../evil,1\n")

	s := newTestSplitter(t, Options{OutputDir: out})
	if _, err := s.SplitFile(path); !tberrors.IsCode(err, tberrors.CodePathCollision) {
		t.Fatalf("expected rejection of unsafe category value, got %v", err)
	}
}

func TestSplit_UnsupportedFormatFailsBeforeIO(t *testing.T) {
	_, err := New(Options{
		CategoryCol:  "region",
		InputFormat:  frame.FormatCSV,
		OutputFormat: writer.Format("avro"),
	})
	if !tberrors.IsCode(err, tberrors.CodeUnsupportedFormat) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestSplit_PartitionWriteErrorNamesFileAndCategory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "sales.csv", "region,val\nEU,1\n")

	reg := writer.NewRegistry()
	reg.Register(writer.FormatCSV, failingWriter{})

	s := newTestSplitter(t, Options{OutputDir: out, Registry: reg})
	_, err := s.SplitFile(path)
	if !tberrors.IsCode(err, tberrors.CodePartitionWrite) {
		t.Fatalf("expected partition write error, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "sales.csv") || !strings.Contains(msg, "EU") {
		t.Errorf("error must name file and category: %s", msg)
	}
}

func TestSplit_SiblingFailureDoesNotRollBack(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := writeCSV(t, in, "sales.csv", "region,val\nEU,1\nBAD,2\n")

	reg := writer.NewRegistry()
	reg.Register(writer.FormatCSV, selectiveWriter{fail: "BAD"})

	s := newTestSplitter(t, Options{OutputDir: out, Workers: 1, Registry: reg})
	_, err := s.SplitFile(path)
	if err == nil {
		t.Fatal("expected failure from BAD partition")
	}

	// EU was dispatched first with one worker; its file must survive.
	if _, statErr := os.Stat(filepath.Join(out, "sales_EU.csv")); statErr != nil {
		t.Errorf("successful sibling partition was not kept: %v", statErr)
	}
}

func TestSplitDir_BatchContinuesPastBadFiles(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeCSV(t, in, "a.csv", "region,val\nEU,1\n")
	writeCSV(t, in, "b.csv", "other,val\n1,2\n") // schema gate: skipped
	writeCSV(t, in, "c.csv", "region,val\nUS,3\n")

	log := &recordingLogger{}
	s := newTestSplitter(t, Options{OutputDir: out, Logger: log})

	var processed []string
	err := s.SplitDir(in, "csv", func(path string, res *Result, err error) {
		processed = append(processed, filepath.Base(path))
	})
	if err != nil {
		t.Fatalf("recoverable files must not fail the batch: %v", err)
	}
	if len(processed) != 3 {
		t.Errorf("expected 3 files processed, got %v", processed)
	}

	if _, err := os.Stat(filepath.Join(out, "a_EU.csv")); err != nil {
		t.Errorf("a.csv output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "c_US.csv")); err != nil {
		t.Errorf("c.csv output missing: %v", err)
	}
}

func TestSplit_Idempotent(t *testing.T) {
	in := t.TempDir()
	path := writeCSV(t, in, "sales.csv", fixture)

	run := func() (cats []string, rows int) {
		out := t.TempDir()
		s := newTestSplitter(t, Options{OutputDir: out})
		res, err := s.SplitFile(path)
		if err != nil {
			t.Fatalf("SplitFile failed: %v", err)
		}
		for _, cat := range res.Categories {
			_, r := readCSV(t, filepath.Join(out, "sales_"+cat+".csv"))
			rows += len(r)
		}
		return res.Categories, rows
	}

	cats1, rows1 := run()
	cats2, rows2 := run()
	if strings.Join(cats1, "|") != strings.Join(cats2, "|") || rows1 != rows2 {
		t.Errorf("runs differ: %v/%d vs %v/%d", cats1, rows1, cats2, rows2)
	}
}

// failingWriter always fails.
type failingWriter struct{}

func (failingWriter) Ext() string { return "csv" }

func (failingWriter) Write(t *frame.Table, path string, opts writer.Options) error {
	return tberrors.New(tberrors.CodeWriteFailed, "disk on fire")
}

// selectiveWriter fails only paths containing the marker.
type selectiveWriter struct {
	fail string
}

func (selectiveWriter) Ext() string { return "csv" }

func (w selectiveWriter) Write(t *frame.Table, path string, opts writer.Options) error {
	if strings.Contains(path, w.fail) {
		return tberrors.New(tberrors.CodeWriteFailed, "disk on fire")
	}
	return writer.DelimitedWriter{Format: writer.FormatCSV}.Write(t, path, opts)
}
