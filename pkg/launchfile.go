package pkg

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultLaunchFile is appended to a destination that names a directory
const DefaultLaunchFile = "launch.json"

// The only field of a launch.json document that is ever rewritten
const configurationsField = "configurations"

// ResolveDestination turns a destination path into the launch.json file that
// should be written.
func ResolveDestination(dest string) (string, error) {
	fi, err := os.Stat(dest)
	if err == nil {
		if fi.IsDir() {
			return filepath.Join(dest, DefaultLaunchFile), nil
		}
		return dest, nil
	}

	if !hasExtension(dest) {
		return "", errors.Wrapf(ErrDestinationNotFound, "'%s' is not a file or directory", dest)
	}

	dir := filepath.Dir(dest)
	if di, err := os.Stat(dir); err != nil || !di.IsDir() {
		return "", errors.Wrapf(ErrDestinationNotFound, "directory '%s' does not exist", dir)
	}

	return dest, nil
}

// MergeLaunchFile replaces the "configurations" array of the launch.json file
// at dest with configs, leaving every other top-level field as it was. It
// returns the path of the file that was written.
func MergeLaunchFile(dest string, configs []LaunchConfiguration) (string, error) {
	filename, err := ResolveDestination(dest)
	if err != nil {
		return "", err
	}

	contents := readLaunchFile(filename)

	if configs == nil {
		configs = []LaunchConfiguration{}
	}
	raw, err := json.Marshal(configs)
	if err != nil {
		return "", errors.WithMessage(err, "error encoding launch configurations")
	}
	contents[configurationsField] = raw

	op, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return "", errors.WithMessage(err, "error encoding launch file")
	}
	op = append(op, '\n')

	if err := writeLaunchFile(filename, op); err != nil {
		return "", errors.WithMessagef(err, "error writing '%s'", filename)
	}

	return filename, nil
}

// ConvertLaunchFile writes the launch configurations of src to dest, unless
// src.Writable(strict) refuses. A refused conversion leaves dest untouched.
func ConvertLaunchFile(src *Source, dest string, strict bool) (string, error) {
	if err := src.Writable(strict); err != nil {
		return "", err
	}
	return MergeLaunchFile(dest, src.LaunchConfigurations())
}

// readLaunchFile reads the top-level fields of an existing launch.json. A
// missing or unparseable file counts as an empty document.
func readLaunchFile(filename string) map[string]json.RawMessage {
	ip, err := os.ReadFile(filename)
	if err != nil {
		return map[string]json.RawMessage{}
	}

	var rv map[string]json.RawMessage
	if err := json.Unmarshal(ip, &rv); err != nil || rv == nil {
		return map[string]json.RawMessage{}
	}

	return rv
}

// hasExtension checks if the last element of a path has a file extension.
// A dotfile such as ".vscode" does not count.
func hasExtension(filename string) bool {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	return ext != "" && ext != base
}
