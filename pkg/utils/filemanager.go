// =============================================================================
// Mailchimp CSV Converter - File Manager Utility
// =============================================================================
//
// This module provides the file utilities used by the converter:
//   - Output file naming (date-stamped, deterministic for a given instant)
//   - All-or-nothing file writes
//   - Directory checks
//
// All filesystem access goes through afero so callers can substitute an
// in-memory filesystem.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// DateLayout is the date stamp prefixed to output file names (MM-DD-YYYY).
const DateLayout = "01-02-2006"

// BuildOutputPath generates the output file name for a run.
//
// PARAMETERS:
//   - basename: The file name stem, e.g. "mailchimp".
//   - extension: The format extension without a dot, e.g. "csv".
//   - now: The generation instant. It is converted to UTC before formatting.
//
// RETURNS:
//   - "<MM-DD-YYYY>-<basename>.<extension>"
//
// EXAMPLE:
//   BuildOutputPath("mailchimp", "csv", 2024-01-05T00:00:00Z)
//   output: "01-05-2024-mailchimp.csv"
func BuildOutputPath(basename, extension string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", now.UTC().Format(DateLayout), basename, extension)
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// DirExists reports whether path exists on fsys and is a directory.
func DirExists(fsys afero.Fs, path string) bool {
	ok, err := afero.DirExists(fsys, path)
	return err == nil && ok
}

// =============================================================================
// FILE WRITING
// =============================================================================

// WriteFileAtomic writes a file through a temporary sibling and a rename.
//
// PARAMETERS:
//   - fsys: The filesystem to write to.
//   - path: The final file path. An existing file is replaced.
//   - write: Produces the file content.
//
// RETURNS:
//   - An error if creating, writing, syncing or renaming fails. In that case
//     the temporary file is removed and path is left as it was.
func WriteFileAtomic(fsys afero.Fs, path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.New().String()))

	tmp, err := fsys.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			_ = fsys.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err = fsys.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}
