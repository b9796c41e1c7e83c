// Package path implements the immutable, hierarchical Path value type
// that keys the entire namespace: the naming core's directories and
// files maps, the storage-registration protocol, and every remote call
// that names a file all carry a Path.
//
// A Path is a finite ordered sequence of non-empty components, none of
// which contains '/' or ':'. The empty sequence is the root.
package path

import (
	"encoding/gob"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ewanas/DFS/errors"
)

func init() {
	// Path crosses the wire inside requestFrame.Args and
	// responseFrame.Value interface{} slots, so it (and the slice form
	// returned by Register's to-delete list) must be registered with
	// gob once, here, rather than by every package that sends one.
	gob.Register(Path{})
	gob.Register([]Path(nil))
}

// Path is an immutable, value-equal hierarchical path.
type Path struct {
	components []string
}

// Root returns the root path.
func Root() Path {
	return Path{}
}

// IsRoot reports whether p is the root path.
func (p Path) IsRoot() bool {
	return len(p.components) == 0
}

// Parent returns p's parent. It fails with InvalidArgument if p is root.
func (p Path) Parent() (Path, error) {
	const op = "path.Parent"
	if p.IsRoot() {
		return Path{}, errors.E(op, errors.InvalidArgument, errors.Str("root has no parent"))
	}
	return Path{components: p.components[:len(p.components)-1]}, nil
}

// Last returns p's final component. It fails with InvalidArgument if p
// is root.
func (p Path) Last() (string, error) {
	const op = "path.Last"
	if p.IsRoot() {
		return "", errors.E(op, errors.InvalidArgument, errors.Str("root has no last component"))
	}
	return p.components[len(p.components)-1], nil
}

// Append returns a new path equal to p with component appended.
func Append(p Path, component string) (Path, error) {
	const op = "path.Append"
	if err := validateComponent(component); err != nil {
		return Path{}, errors.E(op, errors.InvalidArgument, err)
	}
	out := make([]string, len(p.components)+1)
	copy(out, p.components)
	out[len(out)-1] = component
	return Path{components: out}, nil
}

func validateComponent(c string) error {
	if c == "" {
		return errors.Str("empty path component")
	}
	if strings.ContainsAny(c, "/:") {
		return errors.Errorf("path component %q contains '/' or ':'", c)
	}
	return nil
}

// Parse parses s into a Path. s must begin with "/" and must not
// contain ':'; repeated slashes and a trailing slash are tolerated and
// collapsed, matching the serialized form produced by String.
func Parse(s string) (Path, error) {
	const op = "path.Parse"
	if !strings.HasPrefix(s, "/") {
		return Path{}, errors.E(op, errors.InvalidArgument, errors.Errorf("path %q must start with '/'", s))
	}
	if strings.Contains(s, ":") {
		return Path{}, errors.E(op, errors.InvalidArgument, errors.Errorf("path %q contains ':'", s))
	}
	var components []string
	for _, c := range strings.Split(s, "/") {
		if c == "" {
			continue
		}
		components = append(components, c)
	}
	return Path{components: components}, nil
}

// IsSubpath reports whether q's component sequence is a prefix of p's.
// Every path is a subpath of itself. This compares components, not
// serialized strings, so that "/foobar" is never a subpath of "/foo".
func IsSubpath(p, q Path) bool {
	if len(q.components) > len(p.components) {
		return false
	}
	for i, c := range q.components {
		if p.components[i] != c {
			return false
		}
	}
	return true
}

// Iterator yields a Path's components outermost-first. It is a
// one-shot, non-restartable sequence.
type Iterator struct {
	remaining []string
}

// Iterate returns a fresh, non-restartable iterator over p's components.
func (p Path) Iterate() *Iterator {
	remaining := make([]string, len(p.components))
	copy(remaining, p.components)
	return &Iterator{remaining: remaining}
}

// Next returns the next component and true, or ("", false) once
// exhausted.
func (it *Iterator) Next() (string, bool) {
	if len(it.remaining) == 0 {
		return "", false
	}
	c := it.remaining[0]
	it.remaining = it.remaining[1:]
	return c, true
}

// String returns the canonical serialized form: "/" for root, otherwise
// "/c1/c2/.../cn" with no trailing slash.
func (p Path) String() string {
	if p.IsRoot() {
		return "/"
	}
	return "/" + strings.Join(p.components, "/")
}

// Equal reports whether p and q have the same component sequence.
func (p Path) Equal(q Path) bool {
	if len(p.components) != len(q.components) {
		return false
	}
	for i, c := range p.components {
		if q.components[i] != c {
			return false
		}
	}
	return true
}

// Compare returns -1, 0, or 1 according to whether p sorts before,
// equal to, or after q, comparing components elementwise.
func (p Path) Compare(q Path) int {
	for i := 0; i < len(p.components) && i < len(q.components); i++ {
		switch {
		case p.components[i] < q.components[i]:
			return -1
		case p.components[i] > q.components[i]:
			return 1
		}
	}
	switch {
	case len(p.components) < len(q.components):
		return -1
	case len(p.components) > len(q.components):
		return 1
	}
	return 0
}

// GobEncode implements gob.GobEncoder. Path's only field is unexported,
// so without this, gob has no exported fields to encode — fatal given
// Path is carried directly in the interface{} slots of requestFrame.Args
// and responseFrame.Value (rmi/wire.go). Encoding the canonical String()
// form keeps the wire representation independent of the component slice's
// internal layout.
func (p Path) GobEncode() ([]byte, error) {
	return []byte(p.String()), nil
}

// GobDecode implements gob.GobDecoder, the inverse of GobEncode.
func (p *Path) GobDecode(data []byte) error {
	const op = "path.Path.GobDecode"
	parsed, err := Parse(string(data))
	if err != nil {
		return errors.E(op, err)
	}
	*p = parsed
	return nil
}

// NumComponents returns the number of components in p (0 for root).
func (p Path) NumComponents() int {
	return len(p.components)
}

// ToLocalFile returns the local-filesystem path corresponding to p,
// rooted at root.
func (p Path) ToLocalFile(root string) string {
	parts := append([]string{root}, p.components...)
	return filepath.Join(parts...)
}

// ListLocal enumerates the local filesystem tree rooted at dir and
// returns, for every regular file found, the Path of that file
// relative to dir. It fails with NotFound if dir does not exist and
// with InvalidArgument if dir exists but is not a directory.
func ListLocal(dir string) ([]Path, error) {
	const op = "path.ListLocal"
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, errors.E(op, errors.NotFound, err)
	}
	if err != nil {
		return nil, errors.E(op, errors.Other, err)
	}
	if !info.IsDir() {
		return nil, errors.E(op, errors.InvalidArgument, errors.Errorf("%s is not a directory", dir))
	}

	var result []Path
	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		components := strings.Split(filepath.ToSlash(rel), "/")
		result = append(result, Path{components: components})
		return nil
	})
	if walkErr != nil {
		return nil, errors.E(op, errors.Other, walkErr)
	}
	return result, nil
}
