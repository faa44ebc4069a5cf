package split

import (
	"path/filepath"
	"strings"

	tberrors "github.com/tabops/tabops/pkg/errors"
)

// partitionTask binds one category value to its target output path.
// Tasks exist only for the duration of one file's fan-out.
type partitionTask struct {
	category string
	path     string
}

// planTasks derives the output path of every category before any write is
// dispatched. Two categories mapping to the same path (compared
// case-insensitively, since the common target filesystems are
// case-insensitive) fail the whole file with no partial output, as do
// category values that would escape the output directory.
func planTasks(opts Options, base string, categories []string, ext, file string) ([]partitionTask, error) {
	tasks := make([]partitionTask, 0, len(categories))
	seen := make(map[string]string, len(categories))

	for _, c := range categories {
		if !pathSafe(c) {
			return nil, tberrors.New(tberrors.CodePathCollision, "category value is not filesystem-safe").
				WithContext("file", file).
				WithContext("category", c)
		}

		var path string
		if opts.MakeDir {
			path = filepath.Join(opts.OutputDir, c, base+"."+ext)
		} else {
			path = filepath.Join(opts.OutputDir, base+"_"+c+"."+ext)
		}

		key := strings.ToLower(path)
		if prev, dup := seen[key]; dup {
			return nil, tberrors.PathCollision(file, path, []string{prev, c})
		}
		seen[key] = c

		tasks = append(tasks, partitionTask{category: c, path: path})
	}
	return tasks, nil
}

// pathSafe rejects category values that would traverse directories when used
// verbatim as a path segment or filename suffix.
func pathSafe(category string) bool {
	if category == "." || category == ".." {
		return false
	}
	return !strings.ContainsAny(category, `/\`)
}
