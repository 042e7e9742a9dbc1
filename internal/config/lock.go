package config

import (
	"os"
	"path/filepath"
)

const lockName = "rsv.lock"

// WithLock runs fn while holding an exclusive lock on dir/rsv.lock so the CLI
// and a running monitor do not interleave writes to the same files.
func WithLock(dir string, fn func() error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, lockName), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return err
	}
	defer unlockFile(f)

	return fn()
}
