package fspath

import (
	"cmp"
	"net/url"
	"path"
	"slices"
	"strings"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

// Path is an immutable location within a FileSystem.
//
// Paths are comparable: two Paths built from the same segments in the same
// FileSystem are ==, whatever route produced them. Construction removes
// redundant and trailing slashes but keeps "." and ".." segments; use
// Normalize to fold them. The zero Path means "no path" and is returned where
// no such path exists, for example the parent of "/".
type Path struct {
	fsys *FileSystem
	path string
}

func newPath(fsys *FileSystem, s string) Path {
	return Path{fsys: fsys, path: clean(s)}
}

// clean collapses repeated slashes and drops a trailing slash.
func clean(s string) string {
	if !strings.Contains(s, "//") && (len(s) <= 1 || !strings.HasSuffix(s, "/")) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '/' && i > 0 && s[i-1] == '/' {
			continue
		}
		b.WriteByte(s[i])
	}
	out := b.String()
	if len(out) > 1 && strings.HasSuffix(out, "/") {
		out = out[:len(out)-1]
	}
	return out
}

// IsZero reports whether p is the zero Path.
func (p Path) IsZero() bool {
	return p.fsys == nil
}

// FileSystem returns the FileSystem p belongs to.
func (p Path) FileSystem() *FileSystem {
	return p.fsys
}

// String returns the path text.
func (p Path) String() string {
	return p.path
}

// IsAbsolute reports whether p starts at the root.
func (p Path) IsAbsolute() bool {
	return strings.HasPrefix(p.path, "/")
}

// Root returns "/" for absolute paths and the zero Path otherwise.
func (p Path) Root() Path {
	if !p.IsAbsolute() {
		return Path{}
	}
	return Path{fsys: p.fsys, path: "/"}
}

// Names returns the name segments of p. The empty path has one empty name;
// the root has none.
func (p Path) Names() []string {
	if p.path == "" {
		return []string{""}
	}
	trimmed := strings.TrimPrefix(p.path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// NameCount returns the number of name segments.
func (p Path) NameCount() int {
	return len(p.Names())
}

// Name returns the name segment at index i as a relative Path.
func (p Path) Name(i int) (Path, error) {
	names := p.Names()
	if i < 0 || i >= len(names) {
		return Path{}, fserrors.WithContextMap(
			fserrors.Newf(fserrors.CodeInvalidInput, "name index %d out of range", i),
			map[string]any{"path": p.path, "count": len(names)})
	}
	return Path{fsys: p.fsys, path: names[i]}, nil
}

// Subpath returns the relative Path of the names in [begin, end).
func (p Path) Subpath(begin, end int) (Path, error) {
	names := p.Names()
	if begin < 0 || end > len(names) || begin >= end {
		return Path{}, fserrors.WithContextMap(
			fserrors.Newf(fserrors.CodeInvalidInput, "subpath range [%d, %d) out of range", begin, end),
			map[string]any{"path": p.path, "count": len(names)})
	}
	return Path{fsys: p.fsys, path: strings.Join(names[begin:end], "/")}, nil
}

// FileName returns the last name segment, or the zero Path for the root.
func (p Path) FileName() Path {
	names := p.Names()
	if len(names) == 0 {
		return Path{}
	}
	return Path{fsys: p.fsys, path: names[len(names)-1]}
}

// Parent returns p without its last name segment. The root and single-name
// relative paths have no parent.
func (p Path) Parent() Path {
	i := strings.LastIndex(p.path, "/")
	switch {
	case p.path == "/" || i < 0:
		return Path{}
	case i == 0:
		return Path{fsys: p.fsys, path: "/"}
	default:
		return Path{fsys: p.fsys, path: p.path[:i]}
	}
}

// StartsWith reports whether p begins with the names of other. Both must be
// absolute or both relative.
func (p Path) StartsWith(other Path) bool {
	if p.fsys != other.fsys || p.IsAbsolute() != other.IsAbsolute() {
		return false
	}
	if other.path == "" {
		return p.path == ""
	}
	mine, theirs := p.Names(), other.Names()
	return len(theirs) <= len(mine) && slices.Equal(mine[:len(theirs)], theirs)
}

// EndsWith reports whether p ends with the names of other. An absolute other
// matches only an equal p.
func (p Path) EndsWith(other Path) bool {
	if p.fsys != other.fsys {
		return false
	}
	if other.IsAbsolute() {
		return p == other
	}
	if other.path == "" {
		return p.path == ""
	}
	mine, theirs := p.Names(), other.Names()
	return len(theirs) <= len(mine) && slices.Equal(mine[len(mine)-len(theirs):], theirs)
}

// Normalize removes "." segments and folds ".." into the preceding name.
// Leading ".." segments of a relative path are kept; at the root they are
// dropped.
func (p Path) Normalize() Path {
	abs := p.IsAbsolute()
	var out []string
	for _, name := range p.Names() {
		switch name {
		case "", ".":
		case "..":
			switch {
			case len(out) > 0 && out[len(out)-1] != "..":
				out = out[:len(out)-1]
			case !abs:
				out = append(out, "..")
			}
		default:
			out = append(out, name)
		}
	}
	joined := strings.Join(out, "/")
	if abs {
		joined = "/" + joined
	}
	return Path{fsys: p.fsys, path: joined}
}

// Resolve joins other onto p. An absolute other is returned as is; an empty
// other returns p. other is interpreted in p's FileSystem.
func (p Path) Resolve(other Path) Path {
	switch {
	case other.IsAbsolute():
		return Path{fsys: p.fsys, path: other.path}
	case other.path == "":
		return p
	case p.path == "":
		return Path{fsys: p.fsys, path: other.path}
	case p.path == "/":
		return Path{fsys: p.fsys, path: "/" + other.path}
	default:
		return Path{fsys: p.fsys, path: p.path + "/" + other.path}
	}
}

// ResolveSibling resolves other against p's parent.
func (p Path) ResolveSibling(other Path) Path {
	parent := p.Parent()
	if parent.IsZero() {
		return Path{fsys: p.fsys, path: other.path}
	}
	return parent.Resolve(other)
}

// Relativize returns the relative Path that leads from p to other, so that
// p.Resolve(r).Normalize() equals other.Normalize().
//
// It fails with CodeIllegalRelativization when one path is absolute and the
// other is not, when they belong to different FileSystems, or when p keeps
// ".." segments that cannot be walked back.
func (p Path) Relativize(other Path) (Path, error) {
	if p.fsys != other.fsys {
		return Path{}, illegalRelativization(p, other, "paths belong to different file systems")
	}
	if p.IsAbsolute() != other.IsAbsolute() {
		return Path{}, illegalRelativization(p, other, "one path is absolute and the other is not")
	}
	if p == other {
		return Path{fsys: p.fsys, path: ""}, nil
	}

	base, target := p.Normalize().Names(), other.Normalize().Names()
	base = slices.DeleteFunc(base, func(s string) bool { return s == "" })
	target = slices.DeleteFunc(target, func(s string) bool { return s == "" })

	common := 0
	for common < len(base) && common < len(target) && base[common] == target[common] {
		common++
	}
	if slices.Contains(base[common:], "..") {
		return Path{}, illegalRelativization(p, other, "base path has unresolvable '..' segments")
	}

	rel := make([]string, 0, len(base)-common+len(target)-common)
	for range base[common:] {
		rel = append(rel, "..")
	}
	rel = append(rel, target[common:]...)
	return Path{fsys: p.fsys, path: strings.Join(rel, "/")}, nil
}

func illegalRelativization(p, other Path, reason string) error {
	return fserrors.WithContextMap(
		fserrors.New(fserrors.CodeIllegalRelativization, reason),
		map[string]any{"path": p.path, "other": other.path})
}

// CompareTo orders Paths by their text, then by FileSystem URI prefix, then
// by FileSystem creation order. It returns 0 only when p == other.
func (p Path) CompareTo(other Path) int {
	if c := strings.Compare(p.path, other.path); c != 0 {
		return c
	}
	if c := strings.Compare(p.fsys.keyOrEmpty(), other.fsys.keyOrEmpty()); c != 0 {
		return c
	}
	return cmp.Compare(p.fsys.seqOrZero(), other.fsys.seqOrZero())
}

// Equals reports whether p and other are the same Path.
func (p Path) Equals(other Path) bool {
	return p == other
}

// ToAbsolute resolves a relative p against its FileSystem's working directory.
func (p Path) ToAbsolute() Path {
	if p.IsAbsolute() || p.fsys == nil {
		return p
	}
	return p.fsys.WorkingDirectory().Resolve(p)
}

// URI returns the absolute URI of p, such as "file:///var/log".
func (p Path) URI() *url.URL {
	u := &url.URL{Path: p.ToAbsolute().path}
	if p.fsys != nil {
		u.Scheme = p.fsys.scheme
		u.Host = p.fsys.authority
	}
	return u
}

// hostName returns the absolute, normalized name handed to the host.
func (p Path) hostName() string {
	return path.Clean(p.ToAbsolute().path)
}

func (fsys *FileSystem) seqOrZero() uint64 {
	if fsys == nil {
		return 0
	}
	return fsys.seq
}

func (fsys *FileSystem) keyOrEmpty() string {
	if fsys == nil {
		return ""
	}
	return fsys.key()
}
