package billy

import (
	"io"
	"io/fs"
	"os"
	"path"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/natefinch/atomic"

	"github.com/jmgilman/go/fspath/core"
)

// LocalFS exposes the operating system's filesystem through osfs.
type LocalFS struct {
	bfs billy.Filesystem
	cfg config
}

// NewLocal creates a local host rooted at "/".
func NewLocal(opts ...Option) *LocalFS {
	return &LocalFS{
		bfs: osfs.New("/"),
		cfg: newConfig(defaultLocalTempDir(), opts),
	}
}

// Unwrap returns the underlying billy.Filesystem.
func (l *LocalFS) Unwrap() billy.Filesystem {
	return l.bfs
}

// Type returns FSTypeLocal.
func (l *LocalFS) Type() core.FSType {
	return core.FSTypeLocal
}

// Open opens the named file for reading.
func (l *LocalFS) Open(name string) (fs.File, error) {
	name = normalize(name)
	f, err := l.bfs.Open(name)
	if err != nil {
		return nil, pathError("open", name, err)
	}
	return newFile(f, name, l.Stat, nil), nil
}

// Stat returns file metadata, following symbolic links.
func (l *LocalFS) Stat(name string) (fs.FileInfo, error) {
	name = normalize(name)
	info, err := l.bfs.Stat(name)
	return info, pathError("stat", name, err)
}

// Lstat returns file metadata without following a terminal link.
func (l *LocalFS) Lstat(name string) (fs.FileInfo, error) {
	name = normalize(name)
	info, err := l.bfs.Lstat(name)
	return info, pathError("lstat", name, err)
}

// ReadDir returns the entries of the named directory sorted by name.
func (l *LocalFS) ReadDir(name string) ([]fs.DirEntry, error) {
	name = normalize(name)
	infos, err := l.bfs.ReadDir(name)
	if err != nil {
		return nil, pathError("readdir", name, err)
	}
	return toEntries(infos), nil
}

// ReadFile reads the named file and returns its contents.
func (l *LocalFS) ReadFile(name string) ([]byte, error) {
	f, err := l.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Exists reports whether the named file or directory exists.
func (l *LocalFS) Exists(name string) (bool, error) {
	_, err := l.Lstat(name)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named file for writing.
func (l *LocalFS) Create(name string) (core.File, error) {
	return l.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// OpenFile opens a file with os-style flags and permissions.
func (l *LocalFS) OpenFile(name string, flag int, perm fs.FileMode) (core.File, error) {
	name = normalize(name)
	if flag&os.O_CREATE != 0 {
		// osfs creates missing parents on O_CREATE.
		if err := l.checkParent("open", name); err != nil {
			return nil, err
		}
	}
	f, err := l.bfs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, pathError("open", name, err)
	}
	return newFile(f, name, l.Stat, nil), nil
}

// WriteFile writes data to the named file, creating or truncating it.
func (l *LocalFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := l.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Mkdir creates a single directory.
// osfs always creates directories with mode 0755, so this goes to the os
// package directly.
func (l *LocalFS) Mkdir(name string, perm fs.FileMode) error {
	return os.Mkdir(normalize(name), perm)
}

// MkdirAll creates a directory along with any necessary parents.
func (l *LocalFS) MkdirAll(name string, perm fs.FileMode) error {
	return os.MkdirAll(normalize(name), perm)
}

// Remove removes the named file or empty directory.
func (l *LocalFS) Remove(name string) error {
	name = normalize(name)
	return pathError("remove", name, l.bfs.Remove(name))
}

// Rename moves oldpath to newpath.
func (l *LocalFS) Rename(oldpath, newpath string) error {
	oldpath, newpath = normalize(oldpath), normalize(newpath)
	if err := l.checkParent("rename", newpath); err != nil {
		return err
	}
	return pathError("rename", oldpath, l.bfs.Rename(oldpath, newpath))
}

// Symlink creates newname as a symbolic link to oldname.
func (l *LocalFS) Symlink(oldname, newname string) error {
	newname = normalize(newname)
	if err := l.checkParent("symlink", newname); err != nil {
		return err
	}
	return pathError("symlink", newname, l.bfs.Symlink(oldname, newname))
}

// Readlink returns the destination of the named symbolic link.
func (l *LocalFS) Readlink(name string) (string, error) {
	name = normalize(name)
	target, err := l.bfs.Readlink(name)
	return target, pathError("readlink", name, err)
}

// Link creates newname as a hard link to oldname.
func (l *LocalFS) Link(oldname, newname string) error {
	return os.Link(normalize(oldname), normalize(newname))
}

// Chmod changes the permission bits of the named file.
func (l *LocalFS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(normalize(name), mode)
}

// Chown changes the numeric owner and group, following links.
func (l *LocalFS) Chown(name string, uid, gid int) error {
	return os.Chown(normalize(name), uid, gid)
}

// Lchown changes the numeric owner and group of a link itself.
func (l *LocalFS) Lchown(name string, uid, gid int) error {
	return os.Lchown(normalize(name), uid, gid)
}

// Chtimes changes the access and modification times.
func (l *LocalFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(normalize(name), atime, mtime)
}

// TempFile creates a new file in dir and opens it for reading and writing.
func (l *LocalFS) TempFile(dir, pattern string) (core.File, error) {
	if dir == "" {
		dir = l.cfg.tempDir
	}
	f, err := os.CreateTemp(normalize(dir), pattern)
	if err != nil {
		return nil, err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return nil, err
	}
	return l.OpenFile(name, os.O_RDWR, 0)
}

// TempDir creates a new directory in dir and returns its name.
func (l *LocalFS) TempDir(dir, pattern string) (string, error) {
	if dir == "" {
		dir = l.cfg.tempDir
	}
	return os.MkdirTemp(normalize(dir), pattern)
}

// WriteFileAtomic replaces the named file's content through a staged rename.
func (l *LocalFS) WriteFileAtomic(name string, r io.Reader) error {
	name = normalize(name)
	if err := l.checkParent("write", name); err != nil {
		return err
	}
	return pathError("write", name, atomic.WriteFile(name, r))
}

// Watch returns an fsnotify-backed watcher.
func (l *LocalFS) Watch() (core.Watcher, error) {
	return newNotifyWatcher(l.cfg.eventBuffer)
}

func (l *LocalFS) checkParent(op, name string) error {
	parent := path.Dir(name)
	info, err := l.bfs.Stat(parent)
	if err != nil {
		return pathError(op, name, err)
	}
	if !info.IsDir() {
		return errno(op, name, syscall.ENOTDIR)
	}
	return nil
}

// Compile-time interface checks.
var (
	_ core.FS            = (*LocalFS)(nil)
	_ core.SymlinkFS     = (*LocalFS)(nil)
	_ core.MetadataFS    = (*LocalFS)(nil)
	_ core.LinkFS        = (*LocalFS)(nil)
	_ core.TempFS        = (*LocalFS)(nil)
	_ core.AtomicWriteFS = (*LocalFS)(nil)
	_ core.WatchFS       = (*LocalFS)(nil)
)
