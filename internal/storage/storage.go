package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/todotxt"
)

// Load reads all records from the todo.txt file at path.
// A missing file yields an empty list.
func Load(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := todotxt.ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return records, nil
}

// Save replaces the file at path with records. The new content is fully
// rendered before the file is touched and swapped in atomically, so a failed
// run leaves the previous file intact.
func Save(path string, records []model.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	mode := fs.FileMode(0o600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	data := todotxt.MarshalRecords(records)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("storage error writing %s: %w", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("storage error setting permissions on %s: %w", path, err)
	}
	return nil
}
