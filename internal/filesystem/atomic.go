// Package filesystem provides crash-safe file replacement.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// tempPattern names the scratch file created next to the target.
const tempPattern = ".*.tmp"

// WriteFileAtomic replaces target with data so that readers observe either
// the previous contents or the new contents, never a partial file.
//
// Steps:
//  1. Create the parent directory if needed
//  2. Write data to a temp file in the same directory and fsync it
//  3. Rename the temp file over target
//  4. Fsync the directory so the rename survives a crash
//
// On failure the temp file is removed and target is left untouched.
func WriteFileAtomic(target string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0755 is appropriate for application data directories
		return fmt.Errorf("creating parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(target)+tempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("renaming temp to target: %w", err)
	}
	committed = true

	syncDir(dir)
	return nil
}

// syncDir flushes directory metadata. Some platforms cannot open a
// directory for syncing; the rename has already happened, so errors are
// ignored.
func syncDir(dir string) {
	d, err := os.Open(dir) //nolint:gosec // G304: dir is derived from the target path
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
