package split

import (
	"strings"

	"github.com/tabops/tabops/pkg/frame"
)

// Intern is a per-file interning table for category values. Scanned rows
// reuse their backing buffers, so interning both deduplicates and detaches
// category strings from scanner-owned memory. The table is scoped to one
// file's run and discarded afterwards; there is no process-wide cache.
type Intern struct {
	values map[string]string
}

// NewIntern creates an empty interning table.
func NewIntern() *Intern {
	return &Intern{values: make(map[string]string)}
}

// Intern returns the canonical copy of v, adding it if new.
// added reports whether v was seen for the first time.
func (in *Intern) Intern(v string) (canonical string, added bool) {
	if c, ok := in.values[v]; ok {
		return c, false
	}
	c := strings.Clone(v)
	in.values[c] = c
	return c, true
}

// Len returns the number of distinct values interned.
func (in *Intern) Len() int {
	return len(in.values)
}

// Resolve evaluates just the category column of lf and returns its distinct
// values in order of discovery. An empty result is not an error: a file with
// no rows after null handling simply produces no partitions.
func Resolve(lf *frame.LazyFrame, col string, intern *Intern) ([]string, error) {
	var categories []string
	err := lf.Select(col).Scan(func(row []string) error {
		if c, added := intern.Intern(row[0]); added {
			categories = append(categories, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}
