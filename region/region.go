// Package region models named data container handles referenced by OQL
// query derivation: a region name plus its canonical path.
package region

import (
	"strings"
)

// Separator prefixes every canonical region path.
const Separator = "/"

// Region is a named data container descriptor.
type Region struct {
	name string
	path string
}

// New returns a Region whose canonical path is derived from its name.
func New(name string) *Region {
	return &Region{name: name, path: ToRegionPath(name)}
}

// NewWithPath returns a Region with an explicit canonical path, normalized
// to a leading separator.
func NewWithPath(name, path string) *Region {
	return &Region{name: name, path: ToRegionPath(path)}
}

// Name returns the region name, used in error messages.
func (r *Region) Name() string {
	return r.name
}

// FullPath returns the canonical region path, used in FROM clauses.
func (r *Region) FullPath() string {
	return r.path
}

// ToRegionPath normalizes a region name or path to a canonical leading-slash
// region path.
func ToRegionPath(nameOrPath string) string {
	if strings.HasPrefix(nameOrPath, Separator) {
		return nameOrPath
	}
	return Separator + nameOrPath
}

// FromPath builds a Region from a path or bare name, deriving the name from
// the last path segment.
func FromPath(nameOrPath string) *Region {
	path := ToRegionPath(nameOrPath)
	name := path[strings.LastIndex(path, Separator)+1:]
	return &Region{name: name, path: path}
}
