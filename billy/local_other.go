//go:build !linux

package billy

import (
	"io/fs"

	"github.com/jmgilman/go/fspath/core"
)

// Owner is not available on this platform.
func (l *LocalFS) Owner(name string, _ bool) (int, int, error) {
	return 0, 0, &fs.PathError{Op: "owner", Path: name, Err: core.ErrUnsupported}
}

// Access is not available on this platform.
func (l *LocalFS) Access(name string, _ core.AccessMode) error {
	return &fs.PathError{Op: "access", Path: name, Err: core.ErrUnsupported}
}

// Stores is not available on this platform.
func (l *LocalFS) Stores() ([]core.Store, error) {
	return nil, core.ErrUnsupported
}

// StoreOf is not available on this platform.
func (l *LocalFS) StoreOf(name string) (core.Store, error) {
	return core.Store{}, &fs.PathError{Op: "statfs", Path: name, Err: core.ErrUnsupported}
}
