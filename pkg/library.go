package pkg

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/thijzert/runconv/lib/ziptraverser"
)

// WorkspaceExt is the extension of files considered when walking a directory
const WorkspaceExt = ".xml"

// A Source is a workspace file, a directory of workspace files, or a zip
// archive containing them.
type Source struct {
	Path       string
	Workspaces []ParsedWorkspace
	zip        ziptraverser.ZipTraverser
}

// A ParsedWorkspace holds the outcome of parsing one file within a Source
type ParsedWorkspace struct {
	// The full path to the xml file
	Filename string

	// The converted launch configurations, in document order
	Configurations []LaunchConfiguration

	// The number of run configurations that could not be converted
	Skipped int

	// The parse error, if applicable
	Error error
}

func NewSource(path string) *Source {
	rv := &Source{
		Path: path,
		zip:  ziptraverser.New(),
	}
	return rv
}

// Extract reads and converts all run configurations in path. Parse errors in
// individual files are recorded in the corresponding ParsedWorkspace; the
// returned error is only set if path itself cannot be resolved.
func Extract(path string) (*Source, error) {
	s := NewSource(path)
	defer s.Close()

	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// (Re-)read all workspace files from disk
func (s *Source) Refresh() error {
	files, broken, err := s.discover()
	if err != nil {
		return err
	}

	rv := make([]ParsedWorkspace, 0, len(files)+len(broken))
	for _, fn := range files {
		rv = append(rv, s.parseFile(fn))
	}
	rv = append(rv, broken...)

	s.Workspaces = rv
	return nil
}

func (s *Source) Close() {
	s.zip.Close()
}

// LaunchConfigurations returns the launch configurations of all error-free
// workspace files
func (s *Source) LaunchConfigurations() []LaunchConfiguration {
	rv := []LaunchConfiguration{}
	for _, pw := range s.Workspaces {
		if pw.Error == nil {
			rv = append(rv, pw.Configurations...)
		}
	}
	return rv
}

// Errors returns one error for every workspace file that failed to parse
func (s *Source) Errors() []error {
	var rv []error
	for _, pw := range s.Workspaces {
		if pw.Error != nil {
			rv = append(rv, pw.Error)
		}
	}
	return rv
}

// Writable checks if the converted configurations may be written out. In
// strict mode a single failed file is enough to refuse; otherwise at least
// one file must have parsed.
func (s *Source) Writable(strict bool) error {
	failed := len(s.Errors())
	if failed == 0 {
		return nil
	}

	if strict {
		return errors.Wrapf(ErrMalformedSource, "%d of %d file(s) could not be parsed", failed, len(s.Workspaces))
	}
	if failed == len(s.Workspaces) {
		return errors.Wrapf(ErrMalformedSource, "none of %d file(s) could be parsed", failed)
	}
	return nil
}

// discover lists the workspace files in the source. Archives found while
// walking a directory that cannot be read are returned as failed workspaces.
func (s *Source) discover() ([]string, []ParsedWorkspace, error) {
	fi, err := os.Stat(s.Path)
	if err != nil {
		// Maybe it's a file inside an archive
		if s.zip.Exists(s.Path) {
			return []string{s.Path}, nil, nil
		}
		return nil, nil, errors.Wrapf(ErrSourceNotFound, "cannot read '%s'", s.Path)
	}

	if !fi.IsDir() {
		if s.zip.IsArchive(s.Path) {
			names, err := s.zip.List(s.Path, WorkspaceExt)
			if err != nil {
				return nil, nil, errors.Wrapf(ErrSourceNotFound, "cannot read archive '%s': %s", s.Path, err)
			}
			return names, nil, nil
		}
		return []string{s.Path}, nil, nil
	}

	var rv []string
	var broken []ParsedWorkspace
	err = filepath.WalkDir(s.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.Path {
				return err
			}
			// Unreadable subdirectories are left out
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), WorkspaceExt) {
			rv = append(rv, path)
		} else if s.zip.IsArchive(path) {
			names, err := s.zip.List(path, WorkspaceExt)
			if err != nil {
				broken = append(broken, ParsedWorkspace{
					Filename: path,
					Error:    errors.Wrapf(ErrMalformedSource, "error reading archive '%s': %s", path, err),
				})
				return nil
			}
			rv = append(rv, names...)
		}
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrapf(ErrSourceNotFound, "cannot read '%s': %s", s.Path, err)
	}

	return rv, broken, nil
}

func (s *Source) parseFile(filename string) ParsedWorkspace {
	rv := ParsedWorkspace{
		Filename:       filename,
		Configurations: []LaunchConfiguration{},
	}

	f, err := s.zip.Get(filename)
	if err != nil {
		rv.Error = errors.WithMessagef(err, "error opening '%s'", filename)
		return rv
	}
	defer f.Close()

	rcs, err := ImportWorkspace(f)
	if err != nil {
		rv.Error = errors.WithMessagef(err, "error parsing '%s'", filename)
		return rv
	}

	for _, rc := range rcs {
		lc, ok := ConvertConfiguration(rc)
		if !ok {
			rv.Skipped++
			continue
		}
		rv.Configurations = append(rv.Configurations, lc)
	}

	return rv
}
