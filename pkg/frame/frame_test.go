package frame

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestScanDelimited_Columns_NoDataRead(t *testing.T) {
	path := writeFile(t, "data.csv", "region,val\nEU,1\nUS,2\n")

	lf := ScanDelimited(path, ',')
	cols, err := lf.Columns()
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	if len(cols) != 2 || cols[0] != "region" || cols[1] != "val" {
		t.Errorf("unexpected columns: %v", cols)
	}
}

func TestScanDelimited_Collect(t *testing.T) {
	path := writeFile(t, "data.csv", "region,val\nEU,1\nUS,2\n")

	tab, err := ScanDelimited(path, ',').Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if tab.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", tab.NumRows())
	}
	if got := tab.Rows()[1][0]; got != "US" {
		t.Errorf("expected US, got %q", got)
	}
}

func TestScanDelimited_CustomSeparator(t *testing.T) {
	path := writeFile(t, "data.txt", "a;b\n1;2\n")

	tab, err := ScanDelimited(path, ';').Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if tab.NumRows() != 1 || tab.Rows()[0][1] != "2" {
		t.Errorf("unexpected table: %v", tab.Rows())
	}
}

func TestScanDelimited_RaggedRowsNormalized(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b,c\n1,2\n1,2,3,4\n")

	tab, err := ScanDelimited(path, ',').Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	for i, row := range tab.Rows() {
		if len(row) != 3 {
			t.Errorf("row %d: expected width 3, got %d", i, len(row))
		}
	}
	if tab.Rows()[0][2] != "" {
		t.Errorf("short row should be null-padded, got %q", tab.Rows()[0][2])
	}
}

func TestScan_UnreadablePath(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing.csv"), FormatCSV, ',')
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestScan_UnknownFormat(t *testing.T) {
	path := writeFile(t, "data.csv", "a\n1\n")
	_, err := Scan(path, Format("orc"), ',')
	if err == nil {
		t.Fatal("expected error for unrecognized format")
	}
}

func TestFillNull(t *testing.T) {
	path := writeFile(t, "data.csv", "region,val\nEU,1\n,2\n")

	tab, err := ScanDelimited(path, ',').FillNull("region", "OTHER").Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got := tab.Rows()[1][0]; got != "OTHER" {
		t.Errorf("expected OTHER, got %q", got)
	}
	if tab.NumRows() != 2 {
		t.Errorf("fill must not drop rows, got %d", tab.NumRows())
	}
}

func TestDropNull(t *testing.T) {
	path := writeFile(t, "data.csv", "region,val\nEU,1\n,2\nUS,3\n")

	tab, err := ScanDelimited(path, ',').DropNull("region").Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if tab.NumRows() != 2 {
		t.Fatalf("expected 2 rows after DropNull, got %d", tab.NumRows())
	}
	for _, row := range tab.Rows() {
		if row[0] == "" {
			t.Error("null row survived DropNull")
		}
	}
}

func TestFilterEqAndDrop(t *testing.T) {
	path := writeFile(t, "data.csv", "region,val\nEU,1\nUS,2\nEU,3\n")

	tab, err := ScanDelimited(path, ',').FilterEq("region", "EU").Drop("region").Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if cols := tab.Columns(); len(cols) != 1 || cols[0] != "val" {
		t.Errorf("unexpected columns: %v", cols)
	}
	if tab.NumRows() != 2 {
		t.Errorf("expected 2 EU rows, got %d", tab.NumRows())
	}
}

func TestSelect(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b,c\n1,2,3\n")

	tab, err := ScanDelimited(path, ',').Select("c", "a").Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got := tab.Rows()[0]; got[0] != "3" || got[1] != "1" {
		t.Errorf("unexpected projection: %v", got)
	}
}

func TestTransformationsDoNotMutate(t *testing.T) {
	path := writeFile(t, "data.csv", "region,val\nEU,1\n,2\n")

	base := ScanDelimited(path, ',')
	filled := base.FillNull("region", "X")
	dropped := base.DropNull("region")

	ft, err := filled.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	dt, err := dropped.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	bt, err := base.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if ft.NumRows() != 2 || dt.NumRows() != 1 || bt.NumRows() != 2 {
		t.Errorf("frames interfered: fill=%d drop=%d base=%d",
			ft.NumRows(), dt.NumRows(), bt.NumRows())
	}
	if bt.Rows()[1][0] != "" {
		t.Error("base frame was mutated by FillNull on a derived frame")
	}
}

func TestCache_FilteredViewsShareOneRealization(t *testing.T) {
	path := writeFile(t, "data.csv", "region,val\nEU,1\nUS,2\n")

	cached, err := ScanDelimited(path, ',').Cache()
	if err != nil {
		t.Fatalf("Cache failed: %v", err)
	}

	// Source file is gone; filtered views must still evaluate from memory.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}

	tab, err := cached.FilterEq("region", "EU").Collect()
	if err != nil {
		t.Fatalf("Collect after Cache failed: %v", err)
	}
	if tab.NumRows() != 1 || tab.Rows()[0][1] != "1" {
		t.Errorf("unexpected cached view: %v", tab.Rows())
	}
}

func TestFromTable(t *testing.T) {
	tab := NewTable([]string{"k", "v"}, [][]string{{"a", "1"}, {"b", "2"}})

	out, err := FromTable(tab).FilterEq("k", "b").Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if out.NumRows() != 1 || out.Rows()[0][1] != "2" {
		t.Errorf("unexpected result: %v", out.Rows())
	}
}

func TestMissingColumnInOp(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,2\n")

	if _, err := ScanDelimited(path, ',').FilterEq("nope", "x").Collect(); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestOpenText_Windows1252Fallback(t *testing.T) {
	// 0xE9 is é in latin-1/cp1252 and invalid as a standalone UTF-8 byte.
	path := writeFile(t, "latin.csv", "name,val\ncaf\xe9,1\n")

	tab, err := ScanDelimited(path, ',').Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got := tab.Rows()[0][0]; got != "café" {
		t.Errorf("expected café, got %q", got)
	}
}

func TestTableColumn(t *testing.T) {
	tab := NewTable([]string{"a", "b"}, [][]string{{"1", "x"}, {"2", "y"}})

	if got := tab.Column("b"); len(got) != 2 || got[1] != "y" {
		t.Errorf("unexpected column values: %v", got)
	}
	if got := tab.Column("missing"); got != nil {
		t.Errorf("expected nil for missing column, got %v", got)
	}
}
