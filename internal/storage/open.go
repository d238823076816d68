package storage

import (
	"fmt"
	"log/slog"
)

// Backend identifiers accepted by Open. The backend is chosen by startup
// configuration, never inferred from the runtime.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open constructs the configured backend wrapped in the fallback decorator.
// path is the data file for the file and sqlite backends and ignored for
// memory.
func Open(backend, path string, logger *slog.Logger) (Store, error) {
	var inner Store
	switch backend {
	case BackendMemory:
		inner = NewMemoryStore()
	case BackendFile:
		fs, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		inner = fs
	case BackendSQLite:
		ss, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		inner = ss
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
	return NewFallbackStore(inner, logger), nil
}
