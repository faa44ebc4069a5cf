package writer

import (
	"sync"

	tberrors "github.com/tabops/tabops/pkg/errors"
)

// Registry maps output formats to writers.
type Registry struct {
	mu      sync.RWMutex
	writers map[Format]Writer
}

// DefaultRegistry holds the built-in writers.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(FormatCSV, DelimitedWriter{Format: FormatCSV})
	DefaultRegistry.Register(FormatTXT, DelimitedWriter{Format: FormatTXT})
	DefaultRegistry.Register(FormatParquet, ParquetWriter{})
	DefaultRegistry.Register(FormatXLSX, XLSXWriter{})
}

// NewRegistry creates an empty writer registry.
func NewRegistry() *Registry {
	return &Registry{
		writers: make(map[Format]Writer),
	}
}

// Register registers a writer for a format.
func (r *Registry) Register(format Format, w Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writers[format] = w
}

// Get returns the writer for a format. Unknown formats fail here, before any
// partition work begins.
func (r *Registry) Get(format Format) (Writer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if w, ok := r.writers[format]; ok {
		return w, nil
	}
	return nil, tberrors.UnsupportedFormat(string(format))
}

// Formats returns all registered formats.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.writers))
	for f := range r.writers {
		formats = append(formats, f)
	}
	return formats
}

// Get retrieves a writer from the default registry.
func Get(format Format) (Writer, error) {
	return DefaultRegistry.Get(format)
}
