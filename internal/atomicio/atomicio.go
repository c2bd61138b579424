// Package atomicio provides the filesystem primitives every mutating
// storage-engine write is built from: write-temp-then-rename with fsync of
// both the file and its containing directory, and advisory file locking
// with a bounded acquisition timeout.
package atomicio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteFile atomically replaces path's contents with data: it creates a
// sibling temp file, writes and fsyncs it, renames it over path, then
// fsyncs the containing directory so the rename itself is durable.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	tmpName := filepath.Join(dir, fmt.Sprintf(".%s.tmp.%s", filepath.Base(path), uuid.NewString()))

	f, err := os.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file into place: %w", err)
	}
	success = true

	if err := FsyncDir(dir); err != nil {
		return fmt.Errorf("fsync containing directory: %w", err)
	}
	return nil
}

// FsyncDir fsyncs a directory so a prior rename/create within it is
// durable. No-op-tolerant of platforms where directory fsync is a no-op.
func FsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// CreateExclusive creates path only if it does not already exist, the
// filesystem equivalent of O_CREAT|O_EXCL, used to serialize races such as
// two concurrent project creations.
func CreateExclusive(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("fsync file: %w", err)
	}
	return FsyncDir(dir)
}

// IsTempName reports whether base is a sibling temp artifact that readers
// should skip: a dot-prefixed name containing ".tmp.", as left by an
// interrupted write-temp-rename. Lock files such as ".lock" do not match.
func IsTempName(base string) bool {
	if len(base) == 0 || base[0] != '.' {
		return false
	}
	return containsTmpMarker(base)
}

func containsTmpMarker(s string) bool {
	const marker = ".tmp."
	for i := 0; i+len(marker) <= len(s); i++ {
		if s[i:i+len(marker)] == marker {
			return true
		}
	}
	return false
}
