package hashfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tberrors "github.com/tabops/tabops/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestHashFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "x,y\n1,2\n")

	h1, err := HashFile(path, "blake2b")
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	h2, err := HashFile(path, "blake2b")
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if h1 != h2 {
		t.Error("hash is not deterministic")
	}
	if len(h1) != 128 { // blake2b-512 hex
		t.Errorf("unexpected digest length %d", len(h1))
	}
}

func TestHashFile_UnsupportedAlgorithm(t *testing.T) {
	if _, err := HashFile("whatever", "md5sumish"); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.csv", "data\n")

	digest, err := HashFile(path, "sha256")
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	ok, err := Verify(path, digest, "sha256")
	if err != nil || !ok {
		t.Errorf("expected valid hash, got ok=%v err=%v", ok, err)
	}

	ok, err = Verify(path, strings.Repeat("0", 64), "sha256")
	if err != nil || ok {
		t.Errorf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestCreateManifest_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "1\n")
	writeFile(t, dir, "b.csv", "2\n")
	writeFile(t, dir, "ignored.txt", "3\n")

	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	path, n, err := CreateManifest(dir, "csv", "blake2b", date)
	if err != nil {
		t.Fatalf("CreateManifest failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
	if filepath.Base(path) != "01-hashes-"+filepath.Base(dir)+"-20260829.txt" {
		t.Errorf("unexpected manifest name: %s", path)
	}

	entries, err := ParseManifest(path)
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 parsed entries, got %d", len(entries))
	}
	if entries[0].Algorithm != "blake2b" {
		t.Errorf("unexpected algorithm: %s", entries[0].Algorithm)
	}

	if err := VerifyManifest(path); err != nil {
		t.Errorf("fresh manifest must verify: %v", err)
	}
}

func TestCreateManifest_ExcludesItself(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "1\n")

	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	// Manifest is itself a .txt file; it must not hash itself.
	path, n, err := CreateManifest(dir, "txt", "blake2b", date)
	if err != nil {
		t.Fatalf("CreateManifest failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
	entries, err := ParseManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.File == filepath.Base(path) {
			t.Error("manifest hashed itself")
		}
	}
}

func TestVerifyManifest_DetectsTampering(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "a.csv", "original\n")

	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	path, _, err := CreateManifest(dir, "csv", "sha256", date)
	if err != nil {
		t.Fatalf("CreateManifest failed: %v", err)
	}

	if err := os.WriteFile(target, []byte("tampered\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err = VerifyManifest(path)
	if err == nil {
		t.Fatal("expected verification failure after tampering")
	}
	if !tberrors.IsCode(err, tberrors.CodeHashMismatch) {
		t.Errorf("expected hash mismatch error, got %v", err)
	}
	if !strings.Contains(err.Error(), "a.csv") {
		t.Errorf("error must name the file: %v", err)
	}
}
