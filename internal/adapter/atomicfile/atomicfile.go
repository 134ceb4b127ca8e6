// Package atomicfile writes files through a pending sibling file that is
// renamed into place, so a failed write never leaves a partial file behind.
package atomicfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Write creates the parent directory if needed, streams fn's output into a
// pending file in that directory, and atomically replaces path once fn
// succeeds. The file is created 0644, subject to the process umask.
func Write(path string, fn func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pf, err := renameio.NewPendingFile(path,
		renameio.WithTempDir(dir),
		renameio.WithPermissions(0o644),
	)
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer pf.Cleanup() //nolint:errcheck // no-op after a successful replace

	if err := fn(pf); err != nil {
		return err
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
