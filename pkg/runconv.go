package pkg

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// A Module references the IDE module a run configuration belongs to
type Module struct {
	Name string `xml:"name,attr"`
}

// An Option is a single name/value setting of a run configuration
type Option struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// A RunConfiguration represents one <configuration> element in a JetBrains
// workspace file.
type RunConfiguration struct {
	Name string `xml:"name,attr"`

	// The configuration type. Only PythonConfigurationType is converted.
	Type string `xml:"type,attr"`

	// The folder this configuration is filed under in the IDE, if any
	FolderName string `xml:"folderName,attr,omitempty"`

	Modules []Module `xml:"module"`
	Options []Option `xml:"option"`
}

// Option looks up the value of a direct child option. If the option occurs
// more than once, the last one wins.
func (rc RunConfiguration) Option(name string) (string, bool) {
	value, found := "", false
	for _, o := range rc.Options {
		if o.Name == name {
			value, found = o.Value, true
		}
	}
	return value, found
}

// Group returns the name this configuration should be grouped under: its
// folder, or else its module, or else DefaultGroup.
func (rc RunConfiguration) Group() string {
	if rc.FolderName != "" {
		return rc.FolderName
	}
	if len(rc.Modules) > 0 && rc.Modules[0].Name != "" {
		return rc.Modules[0].Name
	}
	return DefaultGroup
}

// ImportWorkspace reads every <configuration> element from an XML document,
// regardless of its depth, in document order.
func ImportWorkspace(r io.Reader) ([]RunConfiguration, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charsetReader

	rv := []RunConfiguration{}
	sawRoot := false

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(ErrMalformedSource, err.Error())
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true

		if se.Name.Local != "configuration" {
			continue
		}

		var rc RunConfiguration
		if err := d.DecodeElement(&rc, &se); err != nil {
			return nil, errors.Wrap(ErrMalformedSource, err.Error())
		}
		rv = append(rv, rc)
	}

	if !sawRoot {
		return nil, errors.Wrap(ErrMalformedSource, "no root element")
	}

	return rv, nil
}

// charsetReader decodes documents that declare a charset other than UTF-8.
// Labels unknown to IANA get a second chance through the WHATWG index, which
// knows common aliases such as "utf8" and "latin1".
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(label)
		if err != nil {
			return nil, errors.Errorf("unsupported charset '%s'", label)
		}
	}
	return enc.NewDecoder().Reader(input), nil
}
