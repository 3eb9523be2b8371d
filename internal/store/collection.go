// Package store implements the flat-file collection stores that hold all
// application state. Each store loads its entire collection from a single
// JSON file at construction time, serves reads from memory, and rewrites the
// whole file on every mutation. The filesystem is an afero.Fs so tests run
// against an in-memory filesystem with no disk I/O.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// loadCollection reads a JSON array of records from path. A missing file is
// not an error; it yields an empty collection so a fresh deployment starts
// with no data file at all.
func loadCollection[T any](fs afero.Fs, path string) ([]T, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read collection %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", path, err)
	}
	return records, nil
}

// saveCollection rewrites the whole backing file with the given records,
// pretty-printed. An empty collection is written as an empty JSON array so
// the file stays valid for external tools.
func saveCollection[T any](fs afero.Fs, path string, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", path, err)
	}
	return nil
}
