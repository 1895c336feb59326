package castree

import (
	"fmt"
	"strings"
)

// PathComponent is a single segment of a hierarchical name: no separators,
// not "." or "..". It is immutable and safe to copy and compare with ==.
type PathComponent struct {
	name string
}

// NewPathComponent validates s and returns it as a PathComponent.
//
// A valid component is non-empty, contains no '/' and no NUL byte, and is
// neither "." nor "..".
func NewPathComponent(s string) (PathComponent, error) {
	p := PathComponent{name: s}
	if err := p.Validate(); err != nil {
		return PathComponent{}, err
	}
	return p, nil
}

// RawPathComponent wraps b without validation.
//
// The decode path uses it because names on the wire are opaque byte strings;
// callers handing decoded names to a filesystem must call Validate first.
func RawPathComponent(b []byte) PathComponent {
	return PathComponent{name: string(b)}
}

// Validate reports whether the component is a well-formed path segment.
func (p PathComponent) Validate() error {
	switch {
	case p.name == "":
		return fmt.Errorf("%w: empty", ErrInvalidPathComponent)
	case p.name == "." || p.name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidPathComponent, p.name)
	case strings.ContainsAny(p.name, "/\x00"):
		return fmt.Errorf("%w: %q contains a separator or NUL", ErrInvalidPathComponent, p.name)
	}
	return nil
}

// String returns the component as a string.
func (p PathComponent) String() string {
	return p.name
}

// Bytes returns a copy of the component's bytes.
func (p PathComponent) Bytes() []byte {
	return []byte(p.name)
}

// Len returns the component's byte length.
func (p PathComponent) Len() int {
	return len(p.name)
}
