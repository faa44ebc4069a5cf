// Package archive unpacks zip archives in bulk. Corrupt archives are
// quarantined instead of failing the batch.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tberrors "github.com/tabops/tabops/pkg/errors"
	"github.com/tabops/tabops/pkg/listing"
)

// Options configures an extraction run.
type Options struct {
	// RemoveArchives deletes each archive after successful extraction.
	RemoveArchives bool

	// now is overridable for tests.
	now func() time.Time
}

// Entry records the outcome for one archive.
type Entry struct {
	Archive     string
	Dir         string // unpack dir, or quarantine dir for bad archives
	Quarantined bool
	Err         error
}

// Report summarizes an extraction run.
type Report struct {
	Entries     []Entry
	Extracted   int
	Quarantined int
	Removed     int
}

// ExtractDir unpacks every *.zip directly under dir. Each archive lands in
// its own <stem>_<timestamp> directory. Corrupt archives are moved into a
// bad_zip_<stem> directory and the run continues; only setup failures (the
// directory itself unreadable) abort.
func ExtractDir(dir string, opts Options) (*Report, error) {
	if opts.now == nil {
		opts.now = time.Now
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, tberrors.UnreadableSource(dir, err)
	}

	archives, err := listing.Files(dir, "zip")
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, path := range archives {
		entry := extractOne(path, opts)
		report.Entries = append(report.Entries, entry)
		switch {
		case entry.Quarantined:
			report.Quarantined++
		case entry.Err == nil:
			report.Extracted++
			if opts.RemoveArchives {
				if err := os.Remove(path); err == nil {
					report.Removed++
				}
			}
		}
	}
	return report, nil
}

func extractOne(path string, opts Options) Entry {
	stemName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	timestamp := opts.now().Format("20060102150405")
	unpackDir := filepath.Join(filepath.Dir(path), stemName+"_"+timestamp)

	err := Unpack(path, unpackDir)
	if err == nil {
		return Entry{Archive: path, Dir: unpackDir}
	}

	if errors.Is(err, zip.ErrFormat) || tberrors.IsCode(err, tberrors.CodeBadArchive) {
		os.RemoveAll(unpackDir)
		quarantine := filepath.Join(filepath.Dir(path), "bad_zip_"+stemName)
		if mkErr := os.MkdirAll(quarantine, 0755); mkErr == nil {
			if mvErr := os.Rename(path, filepath.Join(quarantine, filepath.Base(path))); mvErr == nil {
				return Entry{Archive: path, Dir: quarantine, Quarantined: true, Err: err}
			}
		}
	}
	return Entry{Archive: path, Err: err}
}

// Unpack extracts one archive into destDir, creating it if needed.
// Entries that would escape destDir are rejected.
func Unpack(path, destDir string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return tberrors.Wrap(err, tberrors.CodeBadArchive, "corrupt archive").
				WithContext("archive", path)
		}
		return tberrors.UnreadableSource(path, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	for _, f := range r.File {
		if err := unpackEntry(f, destDir); err != nil {
			return tberrors.Wrap(err, tberrors.CodeBadArchive, "extract entry").
				WithContext("archive", path).
				WithContext("entry", f.Name)
		}
	}
	return nil
}

func unpackEntry(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.Clean(f.Name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("entry path escapes destination: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
