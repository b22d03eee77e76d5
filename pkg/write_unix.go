//go:build !windows

package pkg

import (
	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

// writeLaunchFile replaces filename in one atomic step: the contents are
// written and synced to a temporary file, which is then renamed into place.
func writeLaunchFile(filename string, contents []byte) error {
	pendingFile, err := renameio.NewPendingFile(filename, renameio.WithPermissions(0644), renameio.WithExistingPermissions())
	if err != nil {
		return errors.WithMessage(err, "create pending launch file")
	}
	defer pendingFile.Cleanup()

	if _, err := pendingFile.Write(contents); err != nil {
		return errors.WithMessage(err, "write launch file")
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return errors.WithMessage(err, "atomically replace launch file")
	}

	return nil
}
