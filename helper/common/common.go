// Package common holds small slice, number and directory helpers
package common

import (
	"fmt"
	"os"
	"path/filepath"
)

// Min returns the smaller of a and b
func Min(a, b uint64) uint64 {
	if b < a {
		return b
	}

	return a
}

// ExtendByteSlice returns b resized to n bytes. The capacity of b is
// reused when it is large enough, and every byte past len(b) reads as zero
func ExtendByteSlice(b []byte, n int) []byte {
	if n <= len(b) {
		return b[:n]
	}

	if n > cap(b) {
		return append(b, make([]byte, n-len(b))...)
	}

	tail := b[len(b):n]
	for i := range tail {
		tail[i] = 0
	}

	return b[:n]
}

// SetupDataDir creates dataDir and the given sub directories of it.
// Directories that already exist are left alone
func SetupDataDir(dataDir string, subDirs ...string) error {
	for _, dir := range append([]string{""}, subDirs...) {
		path := filepath.Join(dataDir, dir)

		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, err)
		}
	}

	return nil
}
