package billy

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"

	"github.com/jmgilman/go/fspath/core"
)

const (
	maxSymlinks   = 40
	memoryTempDir = "/tmp"
)

// MemoryFS is an in-memory host over memfs.
//
// memfs stores entries under their literal names and follows only terminal
// links, so MemoryFS resolves every name itself before touching storage.
type MemoryFS struct {
	mu  sync.Mutex
	bfs billy.Filesystem
	hub *hub
	cfg config
}

// NewMemory creates an empty in-memory host containing only "/".
func NewMemory(opts ...Option) *MemoryFS {
	bfs := memfs.New()
	_ = bfs.MkdirAll("/", 0o755)
	return &MemoryFS{
		bfs: bfs,
		hub: newHub(),
		cfg: newConfig(memoryTempDir, opts),
	}
}

// Unwrap returns the underlying billy.Filesystem.
func (m *MemoryFS) Unwrap() billy.Filesystem {
	return m.bfs
}

// Type returns FSTypeMemory.
func (m *MemoryFS) Type() core.FSType {
	return core.FSTypeMemory
}

// resolve maps name to its storage name by expanding symbolic links in every
// component. The final component is expanded only when followLast is set.
// A missing component ends resolution; the remaining components are appended
// unchanged so the storage call reports ENOENT.
func (m *MemoryFS) resolve(op, name string, followLast bool) (string, error) {
	name = normalize(name)
	parts := splitName(name)
	cur := "/"
	links := 0

	for i := 0; i < len(parts); i++ {
		part := parts[i]
		switch part {
		case "", ".":
			continue
		case "..":
			cur = path.Dir(cur)
			continue
		}

		next := path.Join(cur, part)
		last := i == len(parts)-1
		info, err := m.bfs.Lstat(next)
		if err != nil {
			return path.Join(append([]string{next}, parts[i+1:]...)...), nil
		}

		if info.Mode()&fs.ModeSymlink != 0 && (!last || followLast) {
			links++
			if links > maxSymlinks {
				return "", errno(op, name, syscall.ELOOP)
			}
			target, err := m.bfs.Readlink(next)
			if err != nil {
				return "", pathError(op, name, err)
			}
			if path.IsAbs(target) {
				cur = "/"
			}
			parts = append(splitName(target), parts[i+1:]...)
			i = -1
			continue
		}

		if !last && !info.IsDir() {
			return "", errno(op, name, syscall.ENOTDIR)
		}
		cur = next
	}
	return cur, nil
}

func splitName(name string) []string {
	return strings.Split(strings.Trim(name, "/"), "/")
}

// lstat reads storage metadata for an already resolved name.
func (m *MemoryFS) lstat(op, name string) (fs.FileInfo, error) {
	info, err := m.bfs.Lstat(name)
	if err != nil {
		return nil, errno(op, name, syscall.ENOENT)
	}
	return info, nil
}

func (m *MemoryFS) checkParent(op, name string) error {
	info, err := m.lstat(op, path.Dir(name))
	if err != nil {
		return errno(op, name, syscall.ENOENT)
	}
	if !info.IsDir() {
		return errno(op, name, syscall.ENOTDIR)
	}
	return nil
}

// Open opens the named file for reading.
func (m *MemoryFS) Open(name string) (fs.File, error) {
	return m.OpenFile(name, os.O_RDONLY, 0)
}

// Stat returns file metadata, following symbolic links.
func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stat(name, true)
}

// Lstat returns file metadata without following a terminal link.
func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stat(name, false)
}

func (m *MemoryFS) stat(name string, follow bool) (fs.FileInfo, error) {
	op := "lstat"
	if follow {
		op = "stat"
	}
	resolved, err := m.resolve(op, name, follow)
	if err != nil {
		return nil, err
	}
	info, err := m.bfs.Lstat(resolved)
	if err != nil {
		return nil, errno(op, normalize(name), syscall.ENOENT)
	}
	return namedInfo{FileInfo: info, name: path.Base(normalize(name))}, nil
}

// ReadDir returns the entries of the named directory sorted by name.
func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, err := m.resolve("readdir", name, true)
	if err != nil {
		return nil, err
	}
	info, err := m.lstat("readdir", resolved)
	if err != nil {
		return nil, errno("readdir", normalize(name), syscall.ENOENT)
	}
	if !info.IsDir() {
		return nil, errno("readdir", normalize(name), syscall.ENOTDIR)
	}
	infos, err := m.bfs.ReadDir(resolved)
	if err != nil {
		return nil, pathError("readdir", normalize(name), err)
	}
	return toEntries(infos), nil
}

// ReadFile reads the named file and returns its contents.
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	f, err := m.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Exists reports whether the named entry exists. A dangling link exists.
func (m *MemoryFS) Exists(name string) (bool, error) {
	_, err := m.Lstat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named file for writing.
func (m *MemoryFS) Create(name string) (core.File, error) {
	return m.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// OpenFile opens a file with os-style flags and permissions.
func (m *MemoryFS) OpenFile(name string, flag int, perm fs.FileMode) (core.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = normalize(name)
	if flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0 {
		literal, err := m.resolve("open", name, false)
		if err != nil {
			return nil, err
		}
		if _, err := m.bfs.Lstat(literal); err == nil {
			return nil, errno("open", name, syscall.EEXIST)
		}
	}

	resolved, err := m.resolve("open", name, true)
	if err != nil {
		return nil, err
	}

	info, statErr := m.bfs.Lstat(resolved)
	created := statErr != nil
	switch {
	case !created && info.IsDir():
		return nil, errno("open", name, syscall.EISDIR)
	case created && flag&os.O_CREATE == 0:
		return nil, errno("open", name, syscall.ENOENT)
	case created:
		if err := m.checkParent("open", resolved); err != nil {
			return nil, err
		}
	}

	f, err := m.bfs.OpenFile(resolved, flag, perm)
	if err != nil {
		return nil, pathError("open", name, err)
	}

	writable := flag&(os.O_WRONLY|os.O_RDWR) != 0
	switch {
	case created:
		m.hub.publish(resolved, core.OpCreate)
	case writable && flag&os.O_TRUNC != 0:
		m.hub.publish(resolved, core.OpWrite)
	}

	return newFile(f, name, m.Stat, func(string) { m.hub.publish(resolved, core.OpWrite) }), nil
}

// WriteFile writes data to the named file, creating or truncating it.
func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := m.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}

// Mkdir creates a single directory.
func (m *MemoryFS) Mkdir(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, err := m.resolve("mkdir", name, false)
	if err != nil {
		return err
	}
	if _, err := m.bfs.Lstat(resolved); err == nil {
		return errno("mkdir", normalize(name), syscall.EEXIST)
	}
	if err := m.checkParent("mkdir", resolved); err != nil {
		return err
	}
	return m.mkdir(resolved, perm)
}

func (m *MemoryFS) mkdir(resolved string, perm fs.FileMode) error {
	if err := m.bfs.MkdirAll(resolved, perm.Perm()); err != nil {
		return pathError("mkdir", resolved, err)
	}
	m.hub.publish(resolved, core.OpCreate)
	return nil
}

// MkdirAll creates a directory along with any necessary parents.
func (m *MemoryFS) MkdirAll(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := "/"
	for _, part := range splitName(normalize(name)) {
		if part == "" {
			continue
		}
		resolved, err := m.resolve("mkdir", path.Join(cur, part), true)
		if err != nil {
			return err
		}
		info, err := m.bfs.Lstat(resolved)
		switch {
		case err != nil:
			if err := m.mkdir(resolved, perm); err != nil {
				return err
			}
		case !info.IsDir():
			return errno("mkdir", resolved, syscall.ENOTDIR)
		}
		cur = resolved
	}
	return nil
}

// Remove removes the named file or empty directory.
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, err := m.resolve("remove", name, false)
	if err != nil {
		return err
	}
	if err := m.remove(resolved); err != nil {
		return pathError("remove", normalize(name), err)
	}
	return nil
}

func (m *MemoryFS) remove(resolved string) error {
	info, err := m.bfs.Lstat(resolved)
	if err != nil {
		return syscall.ENOENT
	}
	if info.IsDir() {
		children, err := m.bfs.ReadDir(resolved)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return syscall.ENOTEMPTY
		}
	}
	if err := m.bfs.Remove(resolved); err != nil {
		return err
	}
	m.hub.publish(resolved, core.OpRemove)
	return nil
}

// Rename moves oldpath to newpath with the replacement rules of rename(2).
//
// memfs renames every entry whose name starts with oldpath, including
// siblings such as "/a.txt" when renaming "/a", so the move is rebuilt entry
// by entry instead.
func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, err := m.resolve("rename", oldpath, false)
	if err != nil {
		return err
	}
	to, err := m.resolve("rename", newpath, false)
	if err != nil {
		return err
	}

	src, err := m.bfs.Lstat(from)
	if err != nil {
		return errno("rename", normalize(oldpath), syscall.ENOENT)
	}
	if from == to {
		return nil
	}
	if src.IsDir() && strings.HasPrefix(to, from+"/") {
		return errno("rename", normalize(oldpath), syscall.EINVAL)
	}
	if err := m.checkParent("rename", to); err != nil {
		return err
	}

	if dst, err := m.bfs.Lstat(to); err == nil {
		switch {
		case dst.IsDir() && !src.IsDir():
			return errno("rename", normalize(newpath), syscall.EISDIR)
		case !dst.IsDir() && src.IsDir():
			return errno("rename", normalize(newpath), syscall.ENOTDIR)
		}
		if err := m.remove(to); err != nil {
			return pathError("rename", normalize(newpath), err)
		}
	}

	if err := m.move(from, to, src); err != nil {
		return pathError("rename", normalize(oldpath), err)
	}
	m.hub.publish(from, core.OpRename)
	m.hub.publish(to, core.OpCreate)
	return nil
}

// move recreates from at to and deletes from, depth first.
func (m *MemoryFS) move(from, to string, info fs.FileInfo) error {
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := m.bfs.Readlink(from)
		if err != nil {
			return err
		}
		if err := m.bfs.Symlink(target, to); err != nil {
			return err
		}
	case info.IsDir():
		if err := m.bfs.MkdirAll(to, info.Mode().Perm()); err != nil {
			return err
		}
		children, err := m.bfs.ReadDir(from)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := m.move(path.Join(from, child.Name()), path.Join(to, child.Name()), child); err != nil {
				return err
			}
		}
	default:
		if err := m.copyContent(from, to, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return m.bfs.Remove(from)
}

func (m *MemoryFS) copyContent(from, to string, perm fs.FileMode) error {
	src, err := m.bfs.Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := m.bfs.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// Symlink creates newname as a symbolic link to oldname.
func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, err := m.resolve("symlink", newname, false)
	if err != nil {
		return err
	}
	if _, err := m.bfs.Lstat(resolved); err == nil {
		return errno("symlink", normalize(newname), syscall.EEXIST)
	}
	if err := m.checkParent("symlink", resolved); err != nil {
		return err
	}
	if err := m.bfs.Symlink(oldname, resolved); err != nil {
		return pathError("symlink", normalize(newname), err)
	}
	m.hub.publish(resolved, core.OpCreate)
	return nil
}

// Readlink returns the destination of the named symbolic link.
func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, err := m.resolve("readlink", name, false)
	if err != nil {
		return "", err
	}
	info, err := m.lstat("readlink", resolved)
	if err != nil {
		return "", errno("readlink", normalize(name), syscall.ENOENT)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return "", errno("readlink", normalize(name), syscall.EINVAL)
	}
	return m.bfs.Readlink(resolved)
}

// TempFile creates a new file in dir and opens it for reading and writing.
func (m *MemoryFS) TempFile(dir, pattern string) (core.File, error) {
	dir, err := m.tempRoot(dir)
	if err != nil {
		return nil, err
	}
	for range tempAttempts {
		f, err := m.OpenFile(tempName(dir, pattern), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, errno("createtemp", path.Join(dir, pattern), syscall.EEXIST)
}

// TempDir creates a new directory in dir and returns its name.
func (m *MemoryFS) TempDir(dir, pattern string) (string, error) {
	dir, err := m.tempRoot(dir)
	if err != nil {
		return "", err
	}
	for range tempAttempts {
		name := tempName(dir, pattern)
		err := m.Mkdir(name, 0o700)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return name, err
	}
	return "", errno("mkdirtemp", path.Join(dir, pattern), syscall.EEXIST)
}

func (m *MemoryFS) tempRoot(dir string) (string, error) {
	if dir != "" {
		return normalize(dir), nil
	}
	if err := m.MkdirAll(m.cfg.tempDir, 0o777); err != nil {
		return "", err
	}
	return normalize(m.cfg.tempDir), nil
}

// Stores reports a single store spanning the whole host.
func (m *MemoryFS) Stores() ([]core.Store, error) {
	return []core.Store{memoryStore}, nil
}

// StoreOf returns the single memory store for any existing name.
func (m *MemoryFS) StoreOf(name string) (core.Store, error) {
	if _, err := m.Lstat(name); err != nil {
		return core.Store{}, err
	}
	return memoryStore, nil
}

var memoryStore = core.Store{Name: "memory", Type: "memfs", Mount: "/"}

// Watch returns a watcher fed by this host's own mutations.
func (m *MemoryFS) Watch() (core.Watcher, error) {
	return m.hub.subscribe(m.cfg.eventBuffer), nil
}

// Compile-time interface checks.
var (
	_ core.FS        = (*MemoryFS)(nil)
	_ core.SymlinkFS = (*MemoryFS)(nil)
	_ core.TempFS    = (*MemoryFS)(nil)
	_ core.StoreFS   = (*MemoryFS)(nil)
	_ core.WatchFS   = (*MemoryFS)(nil)
)
