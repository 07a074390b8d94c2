// Package path provides the immutable hierarchical name used to address
// every file and directory in brisk: an ordered sequence of non-empty
// components, with the root being the empty sequence.
package path

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/brisk-labs/brisk/errors"
)

// Path is an immutable, ordered sequence of path components. The zero
// value is the root.
type Path struct {
	components []string
}

// Root is the root path, "/".
var Root = Path{}

// GobEncode implements gob.GobEncoder so a Path can cross the rpc
// boundary as a request argument or response value despite its
// unexported field: it is encoded as its canonical string form and
// reparsed on the other side.
func (p Path) GobEncode() ([]byte, error) {
	return []byte(p.String()), nil
}

// GobDecode implements gob.GobDecoder, the inverse of GobEncode.
func (p *Path) GobDecode(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// NewPath returns a new path formed by appending component to parent.
// It fails with errors.Invalid if component is empty or contains '/' or
// ':'. A zero-value (root) parent is valid and simply means the result
// has one component: this is this implementation's resolution of
// spec.md §9's open question about a nil parent — there is no pointer-
// nullable parent in this API, only a value type whose zero value already
// means root, so "null parent" and "root parent" are the same case by
// construction.
func NewPath(parent Path, component string) (Path, error) {
	const op = "path.NewPath"
	if err := validateComponent(component); err != nil {
		return Path{}, errors.E(op, errors.Invalid, err)
	}
	out := make([]string, len(parent.components)+1)
	copy(out, parent.components)
	out[len(parent.components)] = component
	return Path{components: out}, nil
}

// Parse parses s into a Path. s must begin with "/" and must not contain
// ":". Empty components between slashes (including a trailing slash) are
// dropped silently.
func Parse(s string) (Path, error) {
	const op = "path.Parse"
	if !strings.HasPrefix(s, "/") {
		return Path{}, errors.E(op, errors.Invalid, errors.Str("path must begin with '/'"))
	}
	if strings.ContainsRune(s, ':') {
		return Path{}, errors.E(op, errors.Invalid, errors.Str("path must not contain ':'"))
	}
	var comps []string
	for _, c := range strings.Split(s, "/") {
		if c == "" {
			continue
		}
		if c == "." || c == ".." {
			return Path{}, errors.E(op, errors.Invalid, errors.Str("path must not contain '.' or '..' components"))
		}
		comps = append(comps, c)
	}
	return Path{components: comps}, nil
}

// MustParse is like Parse but panics on error; useful for constants in
// tests and in code that parses compile-time-known paths.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func validateComponent(c string) error {
	if c == "" {
		return errors.Str("component must not be empty")
	}
	if strings.ContainsRune(c, '/') {
		return errors.Str("component must not contain '/'")
	}
	if strings.ContainsRune(c, ':') {
		return errors.Str("component must not contain ':'")
	}
	if c == "." || c == ".." {
		return errors.Str("component must not be '.' or '..'")
	}
	return nil
}

// IsRoot reports whether p is the root.
func (p Path) IsRoot() bool {
	return len(p.components) == 0
}

// NumComponents returns the number of components in p.
func (p Path) NumComponents() int {
	return len(p.components)
}

// Component returns the ith component of p, counting from 0.
// It panics if i is out of range.
func (p Path) Component(i int) string {
	return p.components[i]
}

// Components returns the components of p in order. The returned slice is
// a copy; mutating it does not affect p.
func (p Path) Components() []string {
	out := make([]string, len(p.components))
	copy(out, p.components)
	return out
}

// Last returns the final component of p. It is undefined (panics) on the
// root.
func (p Path) Last() string {
	if p.IsRoot() {
		panic("path: Last of root")
	}
	return p.components[len(p.components)-1]
}

// Parent returns the path with the last component removed. It is
// undefined (panics) on the root.
func (p Path) Parent() Path {
	if p.IsRoot() {
		panic("path: Parent of root")
	}
	out := make([]string, len(p.components)-1)
	copy(out, p.components[:len(p.components)-1])
	return Path{components: out}
}

// String returns the canonical string form of p: "/" for the root,
// otherwise a "/"-separated concatenation of its components, prefixed
// with "/".
func (p Path) String() string {
	if p.IsRoot() {
		return "/"
	}
	return "/" + strings.Join(p.components, "/")
}

// Equal reports whether p and q name the same path.
func (p Path) Equal(q Path) bool {
	if len(p.components) != len(q.components) {
		return false
	}
	for i := range p.components {
		if p.components[i] != q.components[i] {
			return false
		}
	}
	return true
}

// IsSubpath reports whether other's components form a prefix of p's
// components. This is reflexive: p.IsSubpath(p) is always true.
func (p Path) IsSubpath(other Path) bool {
	if len(other.components) > len(p.components) {
		return false
	}
	for i := range other.components {
		if p.components[i] != other.components[i] {
			return false
		}
	}
	return true
}

// ListFiles returns every regular file reachable under directory on the
// host filesystem, as Paths relative to directory (each beginning with
// "/"). It fails with errors.NotFound if directory does not exist, and
// errors.Invalid if it exists but is not a directory. Traversal order is
// unspecified but stable within one call. A file whose relative name does
// not parse as a Path (for example, one containing ':') is skipped.
func ListFiles(directory string) ([]Path, error) {
	const op = "path.ListFiles"
	info, err := os.Stat(directory)
	if os.IsNotExist(err) {
		return nil, errors.E(op, errors.NotFound, err)
	}
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	if !info.IsDir() {
		return nil, errors.E(op, errors.Invalid, errors.Str("not a directory"))
	}
	var out []Path
	walkErr := filepath.Walk(directory, func(name string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(directory, name)
		if err != nil {
			return err
		}
		p, perr := Parse("/" + filepath.ToSlash(rel))
		if perr != nil {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if walkErr != nil {
		return nil, errors.E(op, errors.IO, walkErr)
	}
	return out, nil
}

// ToFile produces a host-filesystem path rooted at root, for the file or
// directory named by p. The result is always within root: p's components
// can never be "", ".", or "..", or contain "/" or ":", since those are
// all rejected by NewPath and Parse, so there is no path-escape to guard
// against beyond that invariant.
func (p Path) ToFile(root string) string {
	args := append([]string{root}, p.components...)
	return filepath.Join(args...)
}
