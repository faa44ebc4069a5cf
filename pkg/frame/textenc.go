package frame

import (
	"bytes"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

// OpenText opens a text file, falling back to Windows-1252 decoding when the
// content is not valid UTF-8. Windows-1252 decodes any byte sequence, which
// covers the latin-1/cp1252 exports common in legacy tabular dumps.
// The caller must call the returned cleanup function when done.
func OpenText(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	sample := make([]byte, sniffSize)
	n, err := f.Read(sample)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, nil, err
	}
	sample = sample[:n]

	rest := io.MultiReader(bytes.NewReader(sample), f)
	cleanup := func() error { return f.Close() }

	if utf8ValidPrefix(sample, n == sniffSize) {
		return rest, cleanup, nil
	}
	return transform.NewReader(rest, charmap.Windows1252.NewDecoder()), cleanup, nil
}

// utf8ValidPrefix checks UTF-8 validity of a sample. When the sample was
// truncated mid-stream, up to three trailing bytes may belong to a rune that
// continues past the sample and are ignored.
func utf8ValidPrefix(b []byte, truncated bool) bool {
	if truncated {
		for i := 0; i < 3 && len(b) > 0; i++ {
			if utf8.Valid(b) {
				return true
			}
			b = b[:len(b)-1]
		}
	}
	return utf8.Valid(b)
}
