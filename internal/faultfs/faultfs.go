// Package faultfs wraps a host and injects errors into chosen calls.
//
// It exists for tests that need host failures a real host cannot produce on
// demand, such as a directory listing that breaks part way or a rename that
// crosses devices.
package faultfs

import (
	"io/fs"
	"path"
	"sync"

	"github.com/jmgilman/go/fspath/core"
)

// Call records one host call seen by FS.
type Call struct {
	Op   string // "stat", "lstat", "readdir", "rename", ...
	Name string // first name argument
}

type fault struct {
	op, name string
}

type partialList struct {
	keep int
	err  error
}

// FS forwards to an inner host and fails the calls registered with Fail and
// FailReadDir. Symbolic link calls are forwarded when the inner host supports
// them.
type FS struct {
	core.FS

	mu      sync.Mutex
	faults  map[fault]error
	partial map[string]partialList
	calls   []Call
}

// New wraps inner.
func New(inner core.FS) *FS {
	return &FS{
		FS:      inner,
		faults:  make(map[fault]error),
		partial: make(map[string]partialList),
	}
}

// Fail makes every op call on name return err wrapped in an *fs.PathError.
func (f *FS) Fail(op, name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[fault{op: op, name: path.Clean(name)}] = err
}

// FailReadDir makes ReadDir on name return its first keep entries together
// with err.
func (f *FS) FailReadDir(name string, keep int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partial[path.Clean(name)] = partialList{keep: keep, err: err}
}

// Calls returns the calls seen so far.
func (f *FS) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *FS) check(op, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Name: name})
	if err, ok := f.faults[fault{op: op, name: path.Clean(name)}]; ok {
		return &fs.PathError{Op: op, Path: name, Err: err}
	}
	return nil
}

func (f *FS) Open(name string) (fs.File, error) {
	if err := f.check("open", name); err != nil {
		return nil, err
	}
	return f.FS.Open(name)
}

func (f *FS) Stat(name string) (fs.FileInfo, error) {
	if err := f.check("stat", name); err != nil {
		return nil, err
	}
	return f.FS.Stat(name)
}

func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.check("readdir", name); err != nil {
		return nil, err
	}
	entries, err := f.FS.ReadDir(name)
	if err != nil {
		return entries, err
	}
	f.mu.Lock()
	p, ok := f.partial[path.Clean(name)]
	f.mu.Unlock()
	if !ok {
		return entries, nil
	}
	keep := min(p.keep, len(entries))
	return entries[:keep], &fs.PathError{Op: "readdir", Path: name, Err: p.err}
}

func (f *FS) ReadFile(name string) ([]byte, error) {
	if err := f.check("readfile", name); err != nil {
		return nil, err
	}
	return f.FS.ReadFile(name)
}

func (f *FS) Create(name string) (core.File, error) {
	if err := f.check("create", name); err != nil {
		return nil, err
	}
	return f.FS.Create(name)
}

func (f *FS) OpenFile(name string, flag int, perm fs.FileMode) (core.File, error) {
	if err := f.check("openfile", name); err != nil {
		return nil, err
	}
	return f.FS.OpenFile(name, flag, perm)
}

func (f *FS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := f.check("writefile", name); err != nil {
		return err
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *FS) Mkdir(name string, perm fs.FileMode) error {
	if err := f.check("mkdir", name); err != nil {
		return err
	}
	return f.FS.Mkdir(name, perm)
}

func (f *FS) MkdirAll(name string, perm fs.FileMode) error {
	if err := f.check("mkdirall", name); err != nil {
		return err
	}
	return f.FS.MkdirAll(name, perm)
}

func (f *FS) Remove(name string) error {
	if err := f.check("remove", name); err != nil {
		return err
	}
	return f.FS.Remove(name)
}

func (f *FS) Rename(oldpath, newpath string) error {
	if err := f.check("rename", oldpath); err != nil {
		return err
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FS) Lstat(name string) (fs.FileInfo, error) {
	if err := f.check("lstat", name); err != nil {
		return nil, err
	}
	if sfs, ok := f.FS.(core.SymlinkFS); ok {
		return sfs.Lstat(name)
	}
	return f.FS.Stat(name)
}

func (f *FS) Symlink(oldname, newname string) error {
	if err := f.check("symlink", newname); err != nil {
		return err
	}
	sfs, ok := f.FS.(core.SymlinkFS)
	if !ok {
		return &fs.PathError{Op: "symlink", Path: newname, Err: core.ErrUnsupported}
	}
	return sfs.Symlink(oldname, newname)
}

func (f *FS) Readlink(name string) (string, error) {
	if err := f.check("readlink", name); err != nil {
		return "", err
	}
	sfs, ok := f.FS.(core.SymlinkFS)
	if !ok {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: core.ErrUnsupported}
	}
	return sfs.Readlink(name)
}

var (
	_ core.FS        = (*FS)(nil)
	_ core.SymlinkFS = (*FS)(nil)
)
