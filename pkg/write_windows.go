//go:build windows

package pkg

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// writeLaunchFile writes to a temporary file in the same directory and
// renames it over filename.
func writeLaunchFile(filename string, contents []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), ".launch-*.json.tmp")
	if err != nil {
		return errors.WithMessage(err, "create temp launch file")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(contents); err != nil {
		tmpFile.Close()
		return errors.WithMessage(err, "write launch file")
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return errors.WithMessage(err, "sync launch file")
	}
	if err := tmpFile.Close(); err != nil {
		return errors.WithMessage(err, "close launch file")
	}

	if err := os.Rename(tmpPath, filename); err != nil {
		return errors.WithMessage(err, "replace launch file")
	}
	return nil
}
