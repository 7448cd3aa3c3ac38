/*
Copyright © 2025 Logicos Software

secret.go implements scoped temporary directories for secret material
handed to external tools, and their secure removal.
*/
package fsutil

import (
	"crypto/rand"
	"io"
	"log/slog"
	"os"
)

// SecureDeletePasses is how many times SecureDelete overwrites a file.
const SecureDeletePasses = 3

// WithTempDir creates a private temporary directory, runs fn with its path
// and removes the directory afterwards, whatever fn returns.
func WithTempDir(pattern string, fn func(dir string) error) error {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	if err := os.Chmod(dir, 0o700); err != nil {
		return err
	}
	return fn(dir)
}

// WriteSecret creates path with owner-only permissions and writes data.
// The file must not already exist.
func WriteSecret(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SecureDelete overwrites path with random bytes SecureDeletePasses times
// and removes it. Failures, including a file that is already gone, are
// logged at debug level and otherwise ignored.
func SecureDelete(path string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := overwrite(path, SecureDeletePasses); err != nil {
		logger.Debug("secure overwrite failed", "path", path, "error", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Debug("secure delete failed", "path", path, "error", err)
	}
}

func overwrite(path string, passes int) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()

	for i := 0; i < passes; i++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if _, err := io.CopyN(f, rand.Reader, size); err != nil {
			return err
		}
		if err := f.Sync(); err != nil {
			return err
		}
	}
	return nil
}
