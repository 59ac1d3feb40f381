package fspath

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/jmgilman/go/fspath/core"
)

// CopyResult describes a completed copy. Bytes is the number of content bytes
// transferred. Target is set when the destination is a Path.
type CopyResult struct {
	Bytes  int64
	Target Path
}

// CopyRoute copies between one pair of source and target shapes.
type CopyRoute interface {
	// Accepts reports whether the route handles source and target.
	Accepts(source, target any) bool

	// Copy performs the copy.
	Copy(source, target any, opts ...CopyOption) (CopyResult, error)
}

var copyRoutes struct {
	mu     sync.RWMutex
	routes []CopyRoute
}

// RegisterCopyRoute adds a route to Copy. Routes are tried in registration
// order, after the built-in routes.
func RegisterCopyRoute(r CopyRoute) {
	copyRoutes.mu.Lock()
	defer copyRoutes.mu.Unlock()
	copyRoutes.routes = append(copyRoutes.routes, r)
}

func init() {
	RegisterCopyRoute(readerToPath{})
	RegisterCopyRoute(pathToWriter{})
	RegisterCopyRoute(pathToPath{})
}

func findCopyRoute(source, target any) (CopyRoute, bool) {
	copyRoutes.mu.RLock()
	defer copyRoutes.mu.RUnlock()
	for _, r := range copyRoutes.routes {
		if r.Accepts(source, target) {
			return r, true
		}
	}
	return nil, false
}

// Copy copies source to target through the first route that accepts the pair.
//
// Built-in routes copy an io.Reader to a Path, a Path to an io.Writer, and a
// Path to a Path. Any other source that coerces to a Path is converted and
// dispatched again.
//
// Example:
//
//	res, err := fspath.Copy("/etc/hosts", "/tmp/hosts", fspath.ReplaceExisting)
func Copy(source, target any, opts ...CopyOption) (CopyResult, error) {
	if r, ok := findCopyRoute(source, target); ok {
		return r.Copy(source, target, opts...)
	}
	if _, ok := source.(Path); ok {
		return CopyResult{}, unsupportedInput(target, "no copy route for target")
	}
	src, err := ToPath(source)
	if err != nil {
		return CopyResult{}, err
	}
	return Copy(src, target, opts...)
}

// readerToPath streams an io.Reader into a new file.
type readerToPath struct{}

func (readerToPath) Accepts(source, target any) bool {
	if _, ok := source.(io.Reader); !ok {
		return false
	}
	if _, ok := target.(io.Writer); ok {
		return false
	}
	_, err := ToPath(target)
	return err == nil
}

func (readerToPath) Copy(source, target any, opts ...CopyOption) (CopyResult, error) {
	dst, err := writablePath("copy", target)
	if err != nil {
		return CopyResult{}, err
	}
	flags, err := foldCopy(opts)
	if err != nil {
		return CopyResult{}, err
	}
	if flags.copyAttributes || flags.atomicMove || flags.noFollowLinks {
		return CopyResult{}, unsupportedInput(opts, "only ReplaceExisting applies to stream copies")
	}
	if err := prepareTarget("copy", Path{}, dst, flags.replaceExisting); err != nil {
		return CopyResult{}, err
	}
	out, err := dst.fsys.host.OpenFile(dst.hostName(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, defaultFileMode)
	if err != nil {
		return CopyResult{}, hostError("copy", dst, err)
	}
	n, err := io.Copy(out, source.(io.Reader))
	if err != nil {
		_ = out.Close()
		return CopyResult{}, hostError("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return CopyResult{}, hostError("copy", dst, err)
	}
	return CopyResult{Bytes: n, Target: dst}, nil
}

// pathToWriter streams a file into an io.Writer.
type pathToWriter struct{}

func (pathToWriter) Accepts(source, target any) bool {
	_, isPath := source.(Path)
	_, isWriter := target.(io.Writer)
	return isPath && isWriter
}

func (pathToWriter) Copy(source, target any, opts ...CopyOption) (CopyResult, error) {
	if len(opts) > 0 {
		return CopyResult{}, unsupportedInput(opts, "copy options do not apply to stream copies")
	}
	src, err := openPath("copy", source)
	if err != nil {
		return CopyResult{}, err
	}
	in, err := src.fsys.host.Open(src.hostName())
	if err != nil {
		return CopyResult{}, hostError("copy", src, err)
	}
	defer in.Close()
	n, err := io.Copy(target.(io.Writer), in)
	if err != nil {
		return CopyResult{}, hostError("copy", src, err)
	}
	return CopyResult{Bytes: n}, nil
}

// pathToPath copies one entry between Paths, possibly across FileSystems.
type pathToPath struct{}

func (pathToPath) Accepts(source, target any) bool {
	if _, ok := source.(Path); !ok {
		return false
	}
	if _, ok := target.(io.Writer); ok {
		return false
	}
	_, err := otherPath(source.(Path), target)
	return err == nil
}

func (pathToPath) Copy(source, target any, opts ...CopyOption) (CopyResult, error) {
	src, err := openPath("copy", source)
	if err != nil {
		return CopyResult{}, err
	}
	dst, err := otherPath(src, target)
	if err != nil {
		return CopyResult{}, err
	}
	if err := dst.fsys.checkWritable("copy", dst); err != nil {
		return CopyResult{}, err
	}
	flags, err := foldCopy(opts)
	if err != nil {
		return CopyResult{}, err
	}
	if flags.atomicMove {
		return CopyResult{}, unsupportedOption(AtomicMove)
	}
	n, err := copyPath(src, dst, flags)
	if err != nil {
		return CopyResult{}, err
	}
	return CopyResult{Bytes: n, Target: dst}, nil
}

// copyPath copies a single entry. Directories are created empty and, with
// noFollowLinks, links are recreated rather than followed.
func copyPath(src, dst Path, flags copyFlags) (int64, error) {
	if same, err := sameEntry(src, dst); err != nil || same {
		return 0, err
	}
	info, err := src.fsys.stat(src.hostName(), !flags.noFollowLinks)
	if err != nil {
		return 0, hostError("copy", src, err, dst)
	}
	if err := prepareTarget("copy", src, dst, flags.replaceExisting); err != nil {
		return 0, err
	}

	var n int64
	switch {
	case info.IsDir():
		err = dst.fsys.host.Mkdir(dst.hostName(), defaultDirMode)
	case info.Mode()&fs.ModeSymlink != 0:
		err = copyLink(src, dst)
	default:
		n, err = copyContent(src, dst)
	}
	if err != nil {
		return n, hostError("copy", src, err, dst)
	}

	if flags.copyAttributes && info.Mode()&fs.ModeSymlink == 0 {
		if err := copyAttributes(dst, info); err != nil {
			return n, hostError("copy", dst, err)
		}
	}
	return n, nil
}

// sameEntry reports whether src and dst name the same existing file.
func sameEntry(src, dst Path) (bool, error) {
	if src.fsys != dst.fsys {
		return false, nil
	}
	if src.hostName() == dst.hostName() {
		return true, nil
	}
	a, err := src.fsys.host.Stat(src.hostName())
	if err != nil {
		return false, nil
	}
	b, err := dst.fsys.host.Stat(dst.hostName())
	if err != nil {
		return false, nil
	}
	return os.SameFile(a, b), nil
}

func copyLink(src, dst Path) error {
	ssfs, ok := src.fsys.host.(core.SymlinkFS)
	if !ok {
		return core.ErrUnsupported
	}
	dsfs, ok := dst.fsys.host.(core.SymlinkFS)
	if !ok {
		return core.ErrUnsupported
	}
	target, err := ssfs.Readlink(src.hostName())
	if err != nil {
		return err
	}
	return dsfs.Symlink(target, dst.hostName())
}

func copyContent(src, dst Path) (int64, error) {
	in, err := src.fsys.host.Open(src.hostName())
	if err != nil {
		return 0, err
	}
	defer in.Close()
	out, err := dst.fsys.host.OpenFile(dst.hostName(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, defaultFileMode)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	return n, errors.Join(err, out.Close())
}

// copyAttributes applies the permissions and modification time of info to
// dst. Hosts without metadata support keep their defaults.
func copyAttributes(dst Path, info fs.FileInfo) error {
	mfs, ok := dst.fsys.host.(core.MetadataFS)
	if !ok {
		return nil
	}
	if err := mfs.Chmod(dst.hostName(), info.Mode().Perm()); err != nil {
		return err
	}
	return mfs.Chtimes(dst.hostName(), time.Time{}, info.ModTime())
}
