package fspath

import (
	"io/fs"
	"path"
	"slices"

	"github.com/jmgilman/go/fspath/core"
	fserrors "github.com/jmgilman/go/fspath/errors"
)

const maxSymlinks = 40

// sameFileSystem coerces other against base and rejects Paths of another
// FileSystem.
func sameFileSystem(base Path, other any) (Path, error) {
	o, err := otherPath(base, other)
	if err != nil {
		return Path{}, err
	}
	if o.fsys != base.fsys {
		return Path{}, fserrors.WithContextMap(
			fserrors.New(fserrors.CodeInvalidInput, "paths belong to different file systems"),
			map[string]any{"path": base.String(), "other": o.String()})
	}
	return o, nil
}

// Compare orders two Paths by their text.
func Compare(a, b any) (int, error) {
	pa, err := ToPath(a)
	if err != nil {
		return 0, err
	}
	pb, err := otherPath(pa, b)
	if err != nil {
		return 0, err
	}
	return pa.CompareTo(pb), nil
}

// StartsWith reports whether p begins with other.
func StartsWith(p, other any) (bool, error) {
	base, err := ToPath(p)
	if err != nil {
		return false, err
	}
	o, err := otherPath(base, other)
	if err != nil {
		return false, err
	}
	return base.StartsWith(o), nil
}

// EndsWith reports whether p ends with other.
func EndsWith(p, other any) (bool, error) {
	base, err := ToPath(p)
	if err != nil {
		return false, err
	}
	o, err := otherPath(base, other)
	if err != nil {
		return false, err
	}
	return base.EndsWith(o), nil
}

// Relativize returns the relative Path from p to other.
func Relativize(p, other any) (Path, error) {
	base, err := ToPath(p)
	if err != nil {
		return Path{}, err
	}
	o, err := otherPath(base, other)
	if err != nil {
		return Path{}, err
	}
	return base.Relativize(o)
}

// Resolve folds others onto p from left to right.
//
// Example:
//
//	p, _ := fspath.Resolve("/srv", "data", "2024/01.log") // /srv/data/2024/01.log
func Resolve(p any, others ...any) (Path, error) {
	acc, err := ToPath(p)
	if err != nil {
		return Path{}, err
	}
	for _, other := range others {
		o, err := sameFileSystem(acc, other)
		if err != nil {
			return Path{}, err
		}
		acc = acc.Resolve(o)
	}
	return acc, nil
}

// ResolveSibling resolves other against p's parent.
func ResolveSibling(p, other any) (Path, error) {
	base, err := ToPath(p)
	if err != nil {
		return Path{}, err
	}
	o, err := sameFileSystem(base, other)
	if err != nil {
		return Path{}, err
	}
	return base.ResolveSibling(o), nil
}

// Normalize folds "." and ".." segments of p.
func Normalize(p any) (Path, error) {
	base, err := ToPath(p)
	if err != nil {
		return Path{}, err
	}
	return base.Normalize(), nil
}

// FileName returns the last name of p, or the zero Path for the root.
func FileName(p any) (Path, error) {
	base, err := ToPath(p)
	if err != nil {
		return Path{}, err
	}
	return base.FileName(), nil
}

// Parent returns the parent of p, or the zero Path if it has none.
func Parent(p any) (Path, error) {
	base, err := ToPath(p)
	if err != nil {
		return Path{}, err
	}
	return base.Parent(), nil
}

// Root returns the root of p, or the zero Path for a relative p.
func Root(p any) (Path, error) {
	base, err := ToPath(p)
	if err != nil {
		return Path{}, err
	}
	return base.Root(), nil
}

// IsAbsolute reports whether p is absolute.
func IsAbsolute(p any) (bool, error) {
	base, err := ToPath(p)
	if err != nil {
		return false, err
	}
	return base.IsAbsolute(), nil
}

// RealPath returns the absolute Path of an existing file with every symbolic
// link resolved. With NoFollowLinks, links are left in place and only
// existence is checked.
//
// A missing file fails with CodeNotFound; the context names the path as given
// and the first missing component. More than 40 links fail with CodeLoop.
func RealPath(p any, opts ...LinkOption) (Path, error) {
	base, err := ToPath(p)
	if err != nil {
		return Path{}, err
	}
	if err := base.fsys.checkOpen("realpath"); err != nil {
		return Path{}, err
	}
	resolved, err := base.fsys.realPath(base, !noFollow(opts))
	if err != nil {
		return Path{}, err
	}
	return newPath(base.fsys, resolved), nil
}

func noFollow(opts []LinkOption) bool {
	return slices.Contains(opts, NoFollowLinks)
}

func (fsys *FileSystem) realPath(p Path, follow bool) (string, error) {
	if !follow {
		name := p.hostName()
		if _, err := fsys.lstat(name); err != nil {
			return "", fsys.realPathError(p, name, err)
		}
		return name, nil
	}

	links := 0
	pending := p.ToAbsolute().Names()
	cur := "/"
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		switch name {
		case "", ".":
			continue
		case "..":
			cur = path.Dir(cur)
			continue
		}

		next := path.Join(cur, name)
		info, err := fsys.lstat(next)
		if err != nil {
			return "", fsys.realPathError(p, next, err)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			cur = next
			continue
		}

		links++
		if links > maxSymlinks {
			return "", fserrors.WithContextMap(
				fserrors.New(fserrors.CodeLoop, "too many levels of symbolic links"),
				map[string]any{"op": "realpath", "path": p.String()})
		}
		target, err := fsys.host.(core.SymlinkFS).Readlink(next)
		if err != nil {
			return "", hostError("realpath", p, err)
		}
		if path.IsAbs(target) {
			cur = "/"
		}
		pending = append(newPath(fsys, target).Names(), pending...)
	}
	return cur, nil
}

func (fsys *FileSystem) realPathError(p Path, missing string, err error) error {
	wrapped := hostError("realpath", p, err)
	if fserrors.HasCode(wrapped, fserrors.CodeNotFound) {
		return fserrors.WithContext(wrapped, "missing", missing)
	}
	return wrapped
}

// lstat reads metadata without following a terminal link when the host
// supports links.
func (fsys *FileSystem) lstat(name string) (fs.FileInfo, error) {
	if sfs, ok := fsys.host.(core.SymlinkFS); ok {
		return sfs.Lstat(name)
	}
	return fsys.host.Stat(name)
}

// stat reads metadata, following links unless follow is false.
func (fsys *FileSystem) stat(name string, follow bool) (fs.FileInfo, error) {
	if follow {
		return fsys.host.Stat(name)
	}
	return fsys.lstat(name)
}
