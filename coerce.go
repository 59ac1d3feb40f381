package fspath

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

func init() {
	RegisterPathCoercer(func(p Path) (Path, error) {
		if p.IsZero() {
			return Path{}, unsupportedInput(p, "the zero Path has no file system")
		}
		return p, nil
	})
	RegisterPathCoercer(func(s string) (Path, error) { return Default().Path(s) })
	RegisterPathCoercer(func(segs []string) (Path, error) {
		if len(segs) == 0 {
			return Default().Path("")
		}
		return Default().Path(segs[0], segs[1:]...)
	})
	RegisterPathCoercer(uriToPath)
	RegisterPathCoercer(func(u url.URL) (Path, error) { return uriToPath(&u) })
	RegisterPathCoercer(func(f *os.File) (Path, error) {
		if f == nil {
			return Path{}, unsupportedInput(f, "nil file")
		}
		return Default().Path(f.Name())
	})
	RegisterPathCoercer(func(c PathCoercible) (Path, error) { return c.ToPath() })

	RegisterFileSystemCoercer(func(fsys *FileSystem) (*FileSystem, error) { return fsys, nil })
	RegisterFileSystemCoercer(func(p Path) (*FileSystem, error) {
		if p.IsZero() {
			return nil, unsupportedInput(p, "the zero Path has no file system")
		}
		return p.fsys, nil
	})
	RegisterFileSystemCoercer(uriToFileSystem)
	RegisterFileSystemCoercer(func(u url.URL) (*FileSystem, error) { return uriToFileSystem(&u) })
	RegisterFileSystemCoercer(func(c FileSystemCoercible) (*FileSystem, error) { return c.ToFileSystem() })
}

// ToPath coerces in into a Path.
//
// With a single argument, in may be a Path, a string, a []string of
// segments, a *url.URL or url.URL, an *os.File, a PathCoercible, or any type
// registered with RegisterPathCoercer.
//
// With extra segments, in must be a *FileSystem (segments are joined in that
// FileSystem) or a string (joined in the default FileSystem). A Path is
// rejected here; use Resolve to extend a Path.
//
// Example:
//
//	a, _ := fspath.ToPath("/foo", "bar")
//	b, _ := fspath.ToPath("/foo/bar")
//	a == b // true
func ToPath(in any, more ...string) (Path, error) {
	if len(more) > 0 {
		switch first := in.(type) {
		case *FileSystem:
			return first.Path(more[0], more[1:]...)
		case string:
			return Default().Path(first, more...)
		case Path:
			return Path{}, unsupportedInput(in, "segments cannot be joined onto a Path; use Resolve")
		default:
			return Path{}, unsupportedInput(in, "first argument must be a *FileSystem or a string when segments follow")
		}
	}

	fn, ok := pathCoercers.lookup(in)
	if !ok {
		return Path{}, unsupportedInput(in, "cannot coerce value to a path")
	}
	return fn(in)
}

// ToAbsolutePath coerces its arguments with ToPath and resolves the result
// against the FileSystem's working directory.
func ToAbsolutePath(in any, more ...string) (Path, error) {
	p, err := ToPath(in, more...)
	if err != nil {
		return Path{}, err
	}
	return p.ToAbsolute(), nil
}

// ToFileSystem coerces in into a FileSystem. With no argument it returns the
// default FileSystem. Accepted shapes are *FileSystem, Path, *url.URL,
// url.URL, FileSystemCoercible and types registered with
// RegisterFileSystemCoercer.
func ToFileSystem(in ...any) (*FileSystem, error) {
	switch len(in) {
	case 0:
		return Default(), nil
	case 1:
	default:
		return nil, fserrors.WithContext(
			fserrors.Newf(fserrors.CodeInvalidInput, "expected at most one file system argument, got %d", len(in)),
			"count", len(in))
	}

	fn, ok := fileSystemCoercers.lookup(in[0])
	if !ok {
		return nil, unsupportedInput(in[0], "cannot coerce value to a file system")
	}
	return fn(in[0])
}

func uriToPath(u *url.URL) (Path, error) {
	fsys, err := uriToFileSystem(u)
	if err != nil {
		return Path{}, err
	}
	if fsys.scheme == "file" && (u.RawQuery != "" || u.Fragment != "") {
		return Path{}, invalidURI(u, "file URI has a query or fragment component")
	}
	if u.Opaque != "" || !strings.HasPrefix(u.Path, "/") {
		return Path{}, invalidURI(u, "URI path is not absolute")
	}
	return fsys.Path(u.Path)
}

func uriToFileSystem(u *url.URL) (*FileSystem, error) {
	if u == nil {
		return nil, unsupportedInput(u, "nil URI")
	}
	if !u.IsAbs() {
		return nil, invalidURI(u, "URI is not absolute")
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "file" {
		if u.Host != "" && u.Host != "localhost" {
			return nil, invalidURI(u, "file URI has an authority component")
		}
		return Default(), nil
	}
	if fsys, ok := mounts.get(scheme, u.Host); ok {
		return fsys, nil
	}
	if !mounts.hasScheme(scheme) {
		return nil, invalidURI(u, "no file system handles this URI scheme")
	}
	return nil, fserrors.WithContext(
		fserrors.New(fserrors.CodeFileSystemNotFound, "no file system is mounted for this URI"),
		"uri", u.String())
}

// ToWatchEventKind coerces in into a WatchEventKind.
//
// WatchEventKind values pass through. The tags "entry-create", "entry-delete"
// and "entry-modify" map to EntryCreate, EntryDelete and EntryModify; any
// other string fails with CodeUnsupportedEventKind. Any other value is wrapped
// in a PassthroughKind for hosts that define their own kinds.
func ToWatchEventKind(in any) (WatchEventKind, error) {
	switch v := in.(type) {
	case WatchEventKind:
		return v, nil
	case string:
		if kind, ok := eventKindTags[v]; ok {
			return kind, nil
		}
		return nil, fserrors.WithContext(
			fserrors.Newf(fserrors.CodeUnsupportedEventKind, "unsupported watch event kind %q", v),
			"kind", v)
	default:
		return PassthroughKind{Value: in}, nil
	}
}

var eventKindTags = map[string]WatchEventKind{
	"entry-create": EntryCreate,
	"entry-delete": EntryDelete,
	"entry-modify": EntryModify,
}

func unsupportedInput(in any, message string) error {
	return fserrors.WithContextMap(
		fserrors.New(fserrors.CodeUnsupportedInput, message),
		map[string]any{"type": fmt.Sprintf("%T", in), "input": fmt.Sprintf("%v", in)})
}

func invalidURI(u *url.URL, message string) error {
	return fserrors.WithContext(fserrors.New(fserrors.CodeInvalidInput, message), "uri", u.String())
}

// otherPath coerces an argument that accompanies base. Strings are parsed in
// base's FileSystem.
func otherPath(base Path, other any) (Path, error) {
	if s, ok := other.(string); ok && base.fsys != nil {
		return base.fsys.Path(s)
	}
	return ToPath(other)
}
