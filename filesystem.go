package fspath

import (
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jmgilman/go/fspath/billy"
	"github.com/jmgilman/go/fspath/core"
	fserrors "github.com/jmgilman/go/fspath/errors"
)

const separator = "/"

// FileSystem is the scope that produces and resolves Paths.
//
// A FileSystem binds a host to a URI scheme and authority, a working
// directory and a read-only flag. It is safe for concurrent use.
type FileSystem struct {
	host       core.FS
	scheme     string
	authority  string
	workingDir string
	readOnly   bool
	logger     *slog.Logger
	isDefault  bool
	closed     atomic.Bool
	seq        uint64
}

var fileSystemSeq atomic.Uint64

// NewFileSystem creates a FileSystem over host.
// The FileSystem is not reachable from URIs until it is mounted.
func NewFileSystem(host core.FS, opts ...Option) *FileSystem {
	o := fileSystemOptions{workingDir: "/"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scheme == "" {
		switch host.Type() {
		case core.FSTypeLocal:
			o.scheme = "file"
		case core.FSTypeObject:
			o.scheme = "s3"
		default:
			o.scheme = "mem"
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &FileSystem{
		host:       host,
		scheme:     strings.ToLower(o.scheme),
		authority:  o.authority,
		workingDir: path.Join("/", o.workingDir),
		readOnly:   o.readOnly,
		logger:     o.logger,
		seq:        fileSystemSeq.Add(1),
	}
}

var defaultFileSystem = sync.OnceValue(func() *FileSystem {
	wd, err := os.Getwd()
	if err != nil {
		wd = "/"
	}
	fsys := NewFileSystem(billy.NewLocal(), WithScheme("file"), WithWorkingDirectory(wd))
	fsys.isDefault = true
	mounts.add(fsys)
	fsys.logger.Debug("bound default file system", "cwd", wd)
	return fsys
})

// Default returns the process-wide FileSystem over the local host.
// It is created on first use and can never be closed.
func Default() *FileSystem {
	return defaultFileSystem()
}

// Path joins first and more into a Path of this FileSystem.
// Empty segments are skipped. A segment containing NUL is rejected with
// CodeInvalidInput.
func (fsys *FileSystem) Path(first string, more ...string) (Path, error) {
	var b strings.Builder
	b.WriteString(first)
	for _, seg := range more {
		if seg == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("/")
		}
		b.WriteString(seg)
	}
	joined := b.String()
	if strings.ContainsRune(joined, 0) {
		return Path{}, fserrors.WithContext(
			fserrors.New(fserrors.CodeInvalidInput, "path contains NUL byte"),
			"input", joined)
	}
	return newPath(fsys, joined), nil
}

// Scheme returns the URI scheme of the FileSystem.
func (fsys *FileSystem) Scheme() string {
	return fsys.scheme
}

// Authority returns the URI authority of the FileSystem.
func (fsys *FileSystem) Authority() string {
	return fsys.authority
}

// WorkingDirectory returns the directory relative paths resolve against.
func (fsys *FileSystem) WorkingDirectory() Path {
	return newPath(fsys, fsys.workingDir)
}

// Separator returns "/".
func (fsys *FileSystem) Separator() string {
	return separator
}

// RootDirectories returns the single root "/".
func (fsys *FileSystem) RootDirectories() []Path {
	return []Path{newPath(fsys, "/")}
}

// FileStores returns the stores reported by the host.
func (fsys *FileSystem) FileStores() ([]*FileStore, error) {
	if err := fsys.checkOpen("stores"); err != nil {
		return nil, err
	}
	sfs, ok := fsys.host.(core.StoreFS)
	if !ok {
		return nil, unsupported("stores", Path{})
	}
	stores, err := sfs.Stores()
	if err != nil {
		return nil, hostError("stores", Path{}, err)
	}
	out := make([]*FileStore, len(stores))
	for i, s := range stores {
		out[i] = &FileStore{store: s, fsys: fsys}
	}
	return out, nil
}

// IsOpen reports whether the FileSystem has not been closed.
func (fsys *FileSystem) IsOpen() bool {
	return !fsys.closed.Load()
}

// IsReadOnly reports whether mutations are rejected.
func (fsys *FileSystem) IsReadOnly() bool {
	return fsys.readOnly
}

// Provider returns the host.
func (fsys *FileSystem) Provider() core.FS {
	return fsys.host
}

// SupportedAttributeViews returns the attribute view names ReadAttributes
// accepts for this FileSystem, sorted.
func (fsys *FileSystem) SupportedAttributeViews() []string {
	views := []string{viewBasic}
	if _, ok := fsys.host.(core.OwnerFS); ok {
		views = append(views, viewOwner, viewPosix)
	}
	if _, ok := fsys.host.(core.XattrFS); ok {
		views = append(views, viewUser)
	}
	slices.Sort(views)
	return views
}

// UserPrincipalLookupService returns a service resolving user and group names.
func (fsys *FileSystem) UserPrincipalLookupService() *UserPrincipalLookupService {
	return &UserPrincipalLookupService{fsys: fsys}
}

// Close unmounts the FileSystem and rejects further operations with
// CodeClosed. Closing twice is a no-op. The default FileSystem cannot be
// closed.
func (fsys *FileSystem) Close() error {
	if fsys.isDefault {
		return fserrors.New(fserrors.CodeUnsupported, "the default file system cannot be closed")
	}
	if !fsys.closed.CompareAndSwap(false, true) {
		return nil
	}
	mounts.remove(fsys)
	fsys.logger.Debug("closed file system", "uri", fsys.key())
	return nil
}

// String returns the FileSystem's URI prefix, such as "file://".
func (fsys *FileSystem) String() string {
	return fsys.key()
}

func (fsys *FileSystem) key() string {
	return fsys.scheme + "://" + fsys.authority
}

func (fsys *FileSystem) checkOpen(op string) error {
	if fsys.closed.Load() {
		return fserrors.WithContextMap(
			fserrors.New(fserrors.CodeClosed, "file system is closed"),
			map[string]any{"op": op, "filesystem": fsys.key()})
	}
	return nil
}

func (fsys *FileSystem) checkWritable(op string, p Path) error {
	if err := fsys.checkOpen(op); err != nil {
		return err
	}
	if fsys.readOnly {
		return fserrors.WithContextMap(
			fserrors.New(fserrors.CodeReadOnly, "file system is read-only"),
			map[string]any{"op": op, "path": p.String()})
	}
	return nil
}

// FileStores returns the stores of the FileSystem coerced from fsys, or of the
// default FileSystem.
func FileStores(fsys ...any) ([]*FileStore, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return nil, err
	}
	return f.FileStores()
}

// RootDirectories returns the root directories of the FileSystem coerced from
// fsys, or of the default FileSystem.
func RootDirectories(fsys ...any) ([]Path, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return nil, err
	}
	return f.RootDirectories(), nil
}

// Separator returns the name separator of the FileSystem coerced from fsys.
func Separator(fsys ...any) (string, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return "", err
	}
	return f.Separator(), nil
}

// IsOpen reports whether the FileSystem coerced from fsys is open.
func IsOpen(fsys ...any) (bool, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return false, err
	}
	return f.IsOpen(), nil
}

// IsReadOnly reports whether the FileSystem coerced from fsys is read-only.
func IsReadOnly(fsys ...any) (bool, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return false, err
	}
	return f.IsReadOnly(), nil
}

// SupportedAttributeViews returns the attribute views of the FileSystem
// coerced from fsys.
func SupportedAttributeViews(fsys ...any) ([]string, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return nil, err
	}
	return f.SupportedAttributeViews(), nil
}

// Provider returns the host of the FileSystem coerced from fsys.
func Provider(fsys ...any) (core.FS, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return nil, err
	}
	return f.Provider(), nil
}

// LookupService returns the principal lookup service of the FileSystem
// coerced from fsys.
func LookupService(fsys ...any) (*UserPrincipalLookupService, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return nil, err
	}
	return f.UserPrincipalLookupService(), nil
}

// NewWatchService creates a watch service on the FileSystem coerced from fsys.
func NewWatchService(fsys ...any) (*WatchService, error) {
	f, err := ToFileSystem(fsys...)
	if err != nil {
		return nil, err
	}
	return f.NewWatchService()
}
