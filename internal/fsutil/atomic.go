/*
Copyright © 2025 Logicos Software

atomic.go implements atomic file output for generated keys, public key
lines and signatures.

Output goes to a temporary file in the target's directory and is renamed
over the target on Commit, so a failed or interrupted write never leaves a
truncated key or signature behind.
*/
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrExists is returned when the target exists and overwriting is not allowed.
var ErrExists = errors.New("file already exists")

// AtomicWriter writes to a temporary file and renames it over the target
// on Commit.
type AtomicWriter struct {
	target    string
	temp      *os.File
	perm      os.FileMode
	written   bool
	committed bool
}

// NewAtomicWriter prepares an atomic write of target with mode perm.
// Unless overwrite is set, an existing target is an error.
func NewAtomicWriter(target string, perm os.FileMode, overwrite bool) (*AtomicWriter, error) {
	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrExists, target)
		}
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	// CreateTemp opens with 0600; perm is applied before the rename.
	temp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return nil, err
	}

	return &AtomicWriter{target: target, temp: temp, perm: perm}, nil
}

// Write implements io.Writer.
func (w *AtomicWriter) Write(p []byte) (int, error) {
	n, err := w.temp.Write(p)
	if n > 0 {
		w.written = true
	}
	return n, err
}

// TempPath returns the path of the pending temporary file.
func (w *AtomicWriter) TempPath() string {
	return w.temp.Name()
}

// Commit syncs the temporary file and renames it over the target. A second
// Commit is a no-op.
func (w *AtomicWriter) Commit() error {
	if w.committed {
		return nil
	}
	if err := w.temp.Chmod(w.perm); err != nil {
		w.Abort()
		return err
	}
	if err := w.temp.Sync(); err != nil {
		w.Abort()
		return err
	}
	if err := w.temp.Close(); err != nil {
		os.Remove(w.temp.Name())
		return err
	}
	if err := os.Rename(w.temp.Name(), w.target); err != nil {
		os.Remove(w.temp.Name())
		return fmt.Errorf("atomic write of %s failed: %w", w.target, err)
	}
	w.committed = true
	return nil
}

// Close commits if anything was written and discards the file otherwise.
func (w *AtomicWriter) Close() error {
	if w.committed {
		return nil
	}
	if !w.written {
		w.Abort()
		return nil
	}
	return w.Commit()
}

// Abort discards the temporary file. It is safe to call after Commit.
func (w *AtomicWriter) Abort() {
	if w.committed {
		return
	}
	w.temp.Close()
	os.Remove(w.temp.Name())
}

// WriteFileAtomic writes data to path atomically with mode perm.
func WriteFileAtomic(path string, data []byte, perm os.FileMode, overwrite bool) error {
	w, err := NewAtomicWriter(path, perm, overwrite)
	if err != nil {
		return err
	}
	defer w.Abort()

	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Commit()
}
