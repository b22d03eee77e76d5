package pkg

import (
	"github.com/pkg/errors"
)

var (
	// ErrSourceNotFound is returned when the source path does not resolve to
	// a readable file or directory. Nothing is parsed or written.
	ErrSourceNotFound = errors.New("source not found")

	// ErrDestinationNotFound is returned when the destination path cannot be
	// resolved to a writable location. Nothing is written.
	ErrDestinationNotFound = errors.New("destination not found")

	// ErrMalformedSource is recorded for a source file that is not a
	// well-formed XML document. It only ever affects that one file.
	ErrMalformedSource = errors.New("malformed source document")
)

// IsMalformed checks if err was caused by a malformed source document
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedSource)
}
