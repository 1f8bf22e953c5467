package item

import (
	"cmp"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ID names one content item.
//
// Two items may share a Path when they differ by Version, which lets one
// source file feed several compiled outputs (e.g. "raw" and rendered).
type ID struct {
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
}

// New returns the identifier for a slash-separated path.
func New(p string) ID {
	return ID{Path: normalise(p)}
}

// FromFilePath converts an OS-specific relative file path to an identifier.
func FromFilePath(p string) ID {
	return New(filepath.ToSlash(p))
}

// WithVersion returns a copy of id carrying the given version.
func (id ID) WithVersion(version string) ID {
	id.Version = version
	return id
}

var (
	pathEscaper   = strings.NewReplacer("%", "%25", "#", "%23")
	pathUnescaper = strings.NewReplacer("%25", "%", "%23", "#")
)

// String renders the identifier as "path" or "path#version". A '#' or '%'
// inside the path is percent-escaped, so the first '#' always starts the
// version.
func (id ID) String() string {
	p := pathEscaper.Replace(id.Path)
	if id.Version == "" {
		return p
	}
	return p + "#" + id.Version
}

// Compare orders identifiers by path, then version.
func (id ID) Compare(other ID) int {
	if c := cmp.Compare(id.Path, other.Path); c != 0 {
		return c
	}
	return cmp.Compare(id.Version, other.Version)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return id.Path == "" && id.Version == ""
}

// Parse is the inverse of String.
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("empty identifier")
	}
	p, version, _ := strings.Cut(s, "#")
	if p == "" {
		return ID{}, fmt.Errorf("identifier %q has no path", s)
	}
	return New(pathUnescaper.Replace(p)).WithVersion(version), nil
}

// MarshalText implements encoding.TextMarshaler so IDs can key JSON maps.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalJSON keeps the struct form on the wire; MarshalText is only used
// for map keys.
func (id ID) MarshalJSON() ([]byte, error) {
	type plain ID
	return json.Marshal(plain(id))
}

// UnmarshalJSON decodes the struct form and re-normalises the path.
func (id *ID) UnmarshalJSON(data []byte) error {
	type plain ID
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*id = New(p.Path).WithVersion(p.Version)
	return nil
}

// normalise cleans the path and applies NFC so that decomposed file names
// (as returned by some filesystems) map to the same identifier.
func normalise(p string) string {
	if p == "" {
		return ""
	}
	p = norm.NFC.String(p)
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}
