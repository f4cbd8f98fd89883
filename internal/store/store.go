// Package store persists the scanner's caches as msgpack snapshot
// files. Callers treat the encoding as opaque: the contract is "load
// snapshot or empty" and "save snapshot atomically".
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Load reads the snapshot at path into target. A missing file is not an
// error: target is left untouched so the caller starts from empty.
func Load(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot %s: %w", path, err)
	}
	if err := msgpack.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return nil
}

// Save writes value to path atomically: the snapshot is encoded to a
// temp file in the same directory and renamed over the old one, so a
// crash mid-write never leaves a torn snapshot behind.
func Save(path string, value interface{}) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot %s: %w", path, err)
	}
	return nil
}
