package fspath

import (
	"reflect"
	"sync"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

// PathCoercible is implemented by values that know their own Path.
type PathCoercible interface {
	ToPath() (Path, error)
}

// FileSystemCoercible is implemented by values that know their FileSystem.
type FileSystemCoercible interface {
	ToFileSystem() (*FileSystem, error)
}

// registry dispatches on the dynamic type of a value. Concrete types are
// matched exactly; interface types are tried in registration order.
type registry[R any] struct {
	mu     sync.RWMutex
	exact  map[reflect.Type]func(any) (R, error)
	ifaces []ifaceHandler[R]
}

type ifaceHandler[R any] struct {
	typ reflect.Type
	fn  func(any) (R, error)
}

func newRegistry[R any]() *registry[R] {
	return &registry[R]{exact: make(map[reflect.Type]func(any) (R, error))}
}

func (r *registry[R]) register(typ reflect.Type, fn func(any) (R, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if typ.Kind() == reflect.Interface {
		r.ifaces = append(r.ifaces, ifaceHandler[R]{typ: typ, fn: fn})
		return
	}
	r.exact[typ] = fn
}

func (r *registry[R]) lookup(in any) (func(any) (R, error), bool) {
	typ := reflect.TypeOf(in)
	if typ == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.exact[typ]; ok {
		return fn, true
	}
	for _, h := range r.ifaces {
		if typ.Implements(h.typ) {
			return h.fn, true
		}
	}
	return nil, false
}

var (
	pathCoercers       = newRegistry[Path]()
	fileSystemCoercers = newRegistry[*FileSystem]()
)

// RegisterPathCoercer makes values of type T acceptable wherever a Path is
// expected. T may be a concrete type, matched exactly, or an interface type,
// matched by any value implementing it. A later registration for the same
// concrete type replaces the earlier one.
//
// Example:
//
//	fspath.RegisterPathCoercer(func(a Asset) (fspath.Path, error) {
//	    return fspath.ToPath(a.Location)
//	})
func RegisterPathCoercer[T any](fn func(T) (Path, error)) {
	pathCoercers.register(reflect.TypeFor[T](), func(in any) (Path, error) {
		return fn(in.(T))
	})
}

// RegisterFileSystemCoercer makes values of type T acceptable wherever a
// FileSystem is expected.
func RegisterFileSystemCoercer[T any](fn func(T) (*FileSystem, error)) {
	fileSystemCoercers.register(reflect.TypeFor[T](), func(in any) (*FileSystem, error) {
		return fn(in.(T))
	})
}

// mountTable maps "scheme://authority" to mounted FileSystems.
type mountTable struct {
	mu      sync.RWMutex
	systems map[string]*FileSystem
}

var mounts = &mountTable{systems: make(map[string]*FileSystem)}

func (m *mountTable) add(fsys *FileSystem) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.systems[fsys.key()]; ok {
		return false
	}
	m.systems[fsys.key()] = fsys
	return true
}

func (m *mountTable) remove(fsys *FileSystem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.systems[fsys.key()] == fsys {
		delete(m.systems, fsys.key())
	}
}

func (m *mountTable) get(scheme, authority string) (*FileSystem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fsys, ok := m.systems[scheme+"://"+authority]
	return fsys, ok
}

func (m *mountTable) hasScheme(scheme string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, fsys := range m.systems {
		if fsys.scheme == scheme {
			return true
		}
	}
	return false
}

// Mount makes fsys reachable from URIs with its scheme and authority.
// Mounting a second FileSystem under the same key fails with
// CodeAlreadyExists.
func Mount(fsys *FileSystem) error {
	if fsys.scheme == "file" {
		// the default file system owns "file://"
		Default()
	}
	if err := fsys.checkOpen("mount"); err != nil {
		return err
	}
	if !mounts.add(fsys) {
		return fserrors.WithContext(
			fserrors.New(fserrors.CodeAlreadyExists, "a file system is already mounted at this URI"),
			"uri", fsys.key())
	}
	fsys.logger.Debug("mounted file system", "uri", fsys.key())
	return nil
}

// Unmount removes fsys from the mount table. Unmounting a FileSystem that is
// not mounted is a no-op.
func Unmount(fsys *FileSystem) {
	mounts.remove(fsys)
	fsys.logger.Debug("unmounted file system", "uri", fsys.key())
}
