// Package hashfile creates and verifies hash manifests for data directories.
// A manifest is a plain text file listing each file, its digest, and its
// modification time in framed blocks.
package hashfile

import (
	"bufio"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	tberrors "github.com/tabops/tabops/pkg/errors"
)

// DefaultAlgorithm is used when the caller does not pick one.
const DefaultAlgorithm = "blake2b"

const blockFrame = "--------------------*-* -- *-*--------------------"

// newHasher returns a hasher for the named algorithm.
func newHasher(algo string) (hash.Hash, error) {
	switch strings.ToLower(algo) {
	case "blake2b":
		return blake2b.New512(nil)
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	}
	return nil, fmt.Errorf("unsupported hash algorithm %q", algo)
}

// HashFile computes the hex digest of a file, reading it in chunks.
func HashFile(path, algo string) (string, error) {
	h, err := newHasher(algo)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", tberrors.UnreadableSource(path, err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", tberrors.UnreadableSource(path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Verify recomputes a file's digest and compares it to expected.
func Verify(path, expected, algo string) (bool, error) {
	computed, err := HashFile(path, algo)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(computed, expected), nil
}

// ManifestName returns the manifest file name for a directory and date.
func ManifestName(dir string, date time.Time) string {
	return fmt.Sprintf("01-hashes-%s-%s.txt", filepath.Base(dir), date.Format("20060102"))
}

// CreateManifest hashes every *.ext file directly under dir and writes the
// manifest into dir. The manifest itself is excluded. Returns the manifest
// path and the number of entries written.
func CreateManifest(dir, ext, algo string, date time.Time) (string, int, error) {
	if algo == "" {
		algo = DefaultAlgorithm
	}
	if _, err := newHasher(algo); err != nil {
		return "", 0, err
	}

	manifestName := ManifestName(dir, date)
	manifestPath := filepath.Join(dir, manifestName)

	out, err := os.Create(manifestPath)
	if err != nil {
		return "", 0, tberrors.Wrap(err, tberrors.CodeWriteFailed, "create manifest")
	}
	defer out.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "*."+ext))
	if err != nil {
		return "", 0, err
	}

	w := bufio.NewWriter(out)
	count := 0
	for _, path := range matches {
		if filepath.Base(path) == manifestName {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		digest, err := HashFile(path, algo)
		if err != nil {
			return "", count, err
		}

		fmt.Fprintf(w, "%s\n", blockFrame)
		fmt.Fprintf(w, "file=%s\n", filepath.Base(path))
		fmt.Fprintf(w, "%s=%s\n", algo, digest)
		fmt.Fprintf(w, "modification_date=%s\n", info.ModTime().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "%s\n", blockFrame)
		count++
	}

	if err := w.Flush(); err != nil {
		return "", count, tberrors.Wrap(err, tberrors.CodeWriteFailed, "flush manifest")
	}
	return manifestPath, count, nil
}

// ManifestEntry is one parsed manifest block.
type ManifestEntry struct {
	File      string
	Algorithm string
	Digest    string
}

// ParseManifest reads the entries of a manifest file.
func ParseManifest(path string) ([]ManifestEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, tberrors.UnreadableSource(path, err)
	}
	defer f.Close()

	var entries []ManifestEntry
	var cur ManifestEntry

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == blockFrame:
			if cur.File != "" && cur.Digest != "" {
				entries = append(entries, cur)
				cur = ManifestEntry{}
			}
		case strings.HasPrefix(line, "file="):
			cur.File = strings.TrimPrefix(line, "file=")
		case strings.HasPrefix(line, "modification_date="):
			// informational only
		default:
			if k, v, ok := strings.Cut(line, "="); ok {
				cur.Algorithm = k
				cur.Digest = v
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, tberrors.UnreadableSource(path, err)
	}
	return entries, nil
}

// VerifyManifest recomputes every entry of a manifest against the files next
// to it. Mismatches are returned as a combined error naming each file.
func VerifyManifest(path string) error {
	entries, err := ParseManifest(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	var failed tberrors.MultiError
	for _, e := range entries {
		ok, err := Verify(filepath.Join(dir, e.File), e.Digest, e.Algorithm)
		if err != nil {
			failed.Add(err)
			continue
		}
		if !ok {
			failed.Add(tberrors.New(tberrors.CodeHashMismatch, "hash mismatch").
				WithContext("file", e.File))
		}
	}
	return failed.Combined()
}
