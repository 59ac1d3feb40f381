package fspath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jmgilman/go/fspath/core"
	fserrors "github.com/jmgilman/go/fspath/errors"
)

const (
	defaultDirMode  fs.FileMode = 0o777
	defaultFileMode fs.FileMode = 0o666
)

// writablePath coerces in and checks that its FileSystem accepts mutations.
func writablePath(op string, in any) (Path, error) {
	p, err := ToPath(in)
	if err != nil {
		return Path{}, err
	}
	if err := p.fsys.checkWritable(op, p); err != nil {
		return Path{}, err
	}
	return p, nil
}

// CreateDirectory creates a directory whose parent exists.
func CreateDirectory(p any, attrs ...FileAttribute) (Path, error) {
	dir, err := writablePath("mkdir", p)
	if err != nil {
		return Path{}, err
	}
	mode, err := creationMode(defaultDirMode, attrs)
	if err != nil {
		return Path{}, err
	}
	if err := dir.fsys.host.Mkdir(dir.hostName(), mode); err != nil {
		return Path{}, hostError("mkdir", dir, err)
	}
	return dir, nil
}

// CreateDirectories creates a directory and any missing parents. An existing
// directory is not an error; an existing file fails with CodeAlreadyExists.
func CreateDirectories(p any, attrs ...FileAttribute) (Path, error) {
	dir, err := writablePath("mkdirs", p)
	if err != nil {
		return Path{}, err
	}
	mode, err := creationMode(defaultDirMode, attrs)
	if err != nil {
		return Path{}, err
	}
	if info, err := dir.fsys.host.Stat(dir.hostName()); err == nil {
		if info.IsDir() {
			return dir, nil
		}
		return Path{}, hostError("mkdirs", dir, &fs.PathError{Op: "mkdir", Path: dir.hostName(), Err: fs.ErrExist})
	}
	if err := dir.fsys.host.MkdirAll(dir.hostName(), mode); err != nil {
		return Path{}, hostError("mkdirs", dir, err)
	}
	return dir, nil
}

// CreateFile creates an empty file and fails with CodeAlreadyExists if p
// exists.
func CreateFile(p any, attrs ...FileAttribute) (Path, error) {
	file, err := writablePath("create", p)
	if err != nil {
		return Path{}, err
	}
	mode, err := creationMode(defaultFileMode, attrs)
	if err != nil {
		return Path{}, err
	}
	f, err := file.fsys.host.OpenFile(file.hostName(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return Path{}, hostError("create", file, err)
	}
	if err := f.Close(); err != nil {
		return Path{}, hostError("create", file, err)
	}
	return file, nil
}

// CreateLink creates link as a hard link to existing.
func CreateLink(link, existing any) (Path, error) {
	l, err := writablePath("link", link)
	if err != nil {
		return Path{}, err
	}
	target, err := sameFileSystem(l, existing)
	if err != nil {
		return Path{}, err
	}
	lfs, ok := l.fsys.host.(core.LinkFS)
	if !ok {
		return Path{}, unsupported("link", l)
	}
	if err := lfs.Link(target.hostName(), l.hostName()); err != nil {
		return Path{}, hostError("link", l, err, target)
	}
	return l, nil
}

// CreateSymbolicLink creates link pointing at target. A relative target is
// stored as given and resolved against link's directory when followed.
// Links take no creation attributes.
func CreateSymbolicLink(link, target any, attrs ...FileAttribute) (Path, error) {
	l, err := writablePath("symlink", link)
	if err != nil {
		return Path{}, err
	}
	if len(attrs) > 0 {
		return Path{}, fserrors.WithContext(
			fserrors.New(fserrors.CodeUnsupported, "symbolic links take no creation attributes"),
			"path", l.String())
	}
	t, err := sameFileSystem(l, target)
	if err != nil {
		return Path{}, err
	}
	sfs, ok := l.fsys.host.(core.SymlinkFS)
	if !ok {
		return Path{}, unsupported("symlink", l)
	}
	if err := sfs.Symlink(t.String(), l.hostName()); err != nil {
		return Path{}, hostError("symlink", l, err, t)
	}
	return l, nil
}

// tempHost returns the FileSystem and host directory for temp creation. A nil
// dir selects the host's temporary directory in the default FileSystem.
func tempHost(op string, dir any) (*FileSystem, Path, core.TempFS, error) {
	var fsys *FileSystem
	var d Path
	if dir == nil {
		fsys = Default()
		if err := fsys.checkWritable(op, Path{}); err != nil {
			return nil, Path{}, nil, err
		}
	} else {
		p, err := writablePath(op, dir)
		if err != nil {
			return nil, Path{}, nil, err
		}
		fsys, d = p.fsys, p
	}
	tfs, ok := fsys.host.(core.TempFS)
	if !ok {
		return nil, Path{}, nil, unsupported(op, d)
	}
	return fsys, d, tfs, nil
}

func tempDirName(d Path) string {
	if d.IsZero() {
		return ""
	}
	return d.hostName()
}

// CreateTempDirectory creates a new directory whose name starts with prefix
// in dir, or in the temporary directory when dir is nil.
func CreateTempDirectory(dir any, prefix string, attrs ...FileAttribute) (Path, error) {
	fsys, d, tfs, err := tempHost("mkdtemp", dir)
	if err != nil {
		return Path{}, err
	}
	name, err := tfs.TempDir(tempDirName(d), prefix+"*")
	if err != nil {
		return Path{}, hostError("mkdtemp", d, err)
	}
	created := newPath(fsys, name)
	if err := applyCreationAttributes("mkdtemp", created, attrs); err != nil {
		return Path{}, err
	}
	return created, nil
}

// CreateTempFile creates a new empty file named prefix, a random string and
// suffix in dir, or in the temporary directory when dir is nil. An empty
// suffix selects ".tmp".
func CreateTempFile(dir any, prefix, suffix string, attrs ...FileAttribute) (Path, error) {
	fsys, d, tfs, err := tempHost("mktemp", dir)
	if err != nil {
		return Path{}, err
	}
	if suffix == "" {
		suffix = ".tmp"
	}
	f, err := tfs.TempFile(tempDirName(d), prefix+"*"+suffix)
	if err != nil {
		return Path{}, hostError("mktemp", d, err)
	}
	created := newPath(fsys, f.Name())
	if err := f.Close(); err != nil {
		return Path{}, hostError("mktemp", created, err)
	}
	if err := applyCreationAttributes("mktemp", created, attrs); err != nil {
		return Path{}, err
	}
	return created, nil
}

// applyCreationAttributes sets permissions on an entry the host created with
// its own mode.
func applyCreationAttributes(op string, p Path, attrs []FileAttribute) error {
	if len(attrs) == 0 {
		return nil
	}
	mode, err := creationMode(0, attrs)
	if err != nil {
		return err
	}
	mfs, ok := p.fsys.host.(core.MetadataFS)
	if !ok {
		return unsupported(op, p)
	}
	return hostError(op, p, mfs.Chmod(p.hostName(), mode))
}

// Delete removes a file, link or empty directory. A missing p fails with
// CodeNotFound and a non-empty directory with CodeDirectoryNotEmpty.
func Delete(p any) error {
	path, err := writablePath("delete", p)
	if err != nil {
		return err
	}
	return path.fsys.remove(path)
}

func (fsys *FileSystem) remove(p Path) error {
	err := fsys.host.Remove(p.hostName())
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		// some systems report a non-empty directory as EEXIST
		return fserrors.WrapWithContext(err, fserrors.CodeDirectoryNotEmpty, "delete "+p.String(),
			map[string]any{"op": "delete", "path": p.String()})
	}
	return hostError("delete", p, err)
}

// DeleteIfExists removes p and reports whether it existed.
func DeleteIfExists(p any) (bool, error) {
	err := Delete(p)
	switch {
	case err == nil:
		return true, nil
	case fserrors.HasCode(err, fserrors.CodeNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Move renames source to target.
//
// An existing target fails with CodeAlreadyExists unless ReplaceExisting is
// given. When a rename is impossible (the paths are on different devices or
// in different FileSystems) the entry is copied and the source deleted, unless
// AtomicMove is given, in which case the move fails with CodeCrossDevice.
// Non-empty directories cannot be moved by copying.
func Move(source, target any, opts ...CopyOption) (Path, error) {
	src, err := writablePath("move", source)
	if err != nil {
		return Path{}, err
	}
	dst, err := otherPath(src, target)
	if err != nil {
		return Path{}, err
	}
	if err := dst.fsys.checkWritable("move", dst); err != nil {
		return Path{}, err
	}
	flags, err := foldCopy(opts)
	if err != nil {
		return Path{}, err
	}

	sameFS := src.fsys == dst.fsys
	if flags.atomicMove {
		if !sameFS {
			return Path{}, fserrors.WithContextMap(
				fserrors.New(fserrors.CodeCrossDevice, "atomic move between file systems"),
				map[string]any{"op": "move", "path": src.String(), "target": dst.String()})
		}
		if err := src.fsys.host.Rename(src.hostName(), dst.hostName()); err != nil {
			return Path{}, hostError("move", src, err, dst)
		}
		return dst, nil
	}
	if sameFS && src.hostName() == dst.hostName() {
		return dst, nil
	}

	info, err := src.fsys.lstat(src.hostName())
	if err != nil {
		return Path{}, hostError("move", src, err, dst)
	}
	if err := prepareTarget("move", src, dst, flags.replaceExisting); err != nil {
		return Path{}, err
	}

	if sameFS {
		err := src.fsys.host.Rename(src.hostName(), dst.hostName())
		if err == nil {
			return dst, nil
		}
		if classifyHost(err) != fserrors.CodeCrossDevice {
			return Path{}, hostError("move", src, err, dst)
		}
	}

	src.fsys.logger.Debug("moving by copy", "source", src.String(), "target", dst.URI().String())
	if info.IsDir() {
		entries, err := src.fsys.host.ReadDir(src.hostName())
		if err != nil {
			return Path{}, hostError("move", src, err, dst)
		}
		if len(entries) > 0 {
			return Path{}, fserrors.WithContextMap(
				fserrors.New(fserrors.CodeDirectoryNotEmpty, "cannot move a non-empty directory by copying"),
				map[string]any{"op": "move", "path": src.String(), "target": dst.String()})
		}
	}
	if _, err := copyPath(src, dst, copyFlags{copyAttributes: true, noFollowLinks: true}); err != nil {
		return Path{}, err
	}
	if err := src.fsys.remove(src); err != nil {
		return Path{}, err
	}
	return dst, nil
}

// prepareTarget rejects an existing dst unless replace is set, in which case
// dst is deleted.
func prepareTarget(op string, src, dst Path, replace bool) error {
	if _, err := dst.fsys.lstat(dst.hostName()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return hostError(op, dst, err)
	}
	if !replace {
		return fserrors.WithContextMap(
			fserrors.New(fserrors.CodeAlreadyExists, "target already exists"),
			map[string]any{"op": op, "path": src.String(), "target": dst.String()})
	}
	return dst.fsys.remove(dst)
}

// SetLastModifiedTime sets the modification time of p.
func SetLastModifiedTime(p any, t time.Time) (Path, error) {
	path, mfs, err := metadataPath("chtimes", p)
	if err != nil {
		return Path{}, err
	}
	if err := mfs.Chtimes(path.hostName(), time.Time{}, t); err != nil {
		return Path{}, hostError("chtimes", path, err)
	}
	return path, nil
}

// SetOwner changes the owner of p.
func SetOwner(p any, owner UserPrincipal) (Path, error) {
	return setAttribute(p, "owner:owner", owner, false)
}

// SetPosixPermissions changes the permission bits of p.
func SetPosixPermissions(p any, mode fs.FileMode) (Path, error) {
	path, mfs, err := metadataPath("chmod", p)
	if err != nil {
		return Path{}, err
	}
	if err := mfs.Chmod(path.hostName(), mode.Perm()); err != nil {
		return Path{}, hostError("chmod", path, err)
	}
	return path, nil
}

// SetAttribute sets one attribute named "view:name". Supported attributes are
// basic:lastModifiedTime (time.Time), posix:permissions (fs.FileMode),
// posix:owner and owner:owner (UserPrincipal), posix:group (GroupPrincipal)
// and user:<name> ([]byte or string).
func SetAttribute(p any, attribute string, value any, opts ...LinkOption) (Path, error) {
	return setAttribute(p, attribute, value, !noFollow(opts))
}

//nolint:gocyclo,cyclop // one case per settable attribute
func setAttribute(p any, attribute string, value any, follow bool) (Path, error) {
	view, name := splitAttribute(attribute)
	key := view + ":" + name

	if view == viewUser {
		path, err := writablePath("setxattr", p)
		if err != nil {
			return Path{}, err
		}
		xfs, ok := path.fsys.host.(core.XattrFS)
		if !ok {
			return Path{}, unsupported("setxattr", path)
		}
		var data []byte
		switch v := value.(type) {
		case []byte:
			data = v
		case string:
			data = []byte(v)
		default:
			return Path{}, attributeValueError(attribute, value)
		}
		if err := xfs.SetXattr(path.hostName(), "user."+name, data); err != nil {
			return Path{}, hostError("setxattr", path, err)
		}
		return path, nil
	}

	path, mfs, err := metadataPath("setattr", p)
	if err != nil {
		return Path{}, err
	}
	chown := mfs.Chown
	if !follow {
		chown = mfs.Lchown
	}

	switch key {
	case "basic:lastModifiedTime", "posix:lastModifiedTime":
		t, ok := value.(time.Time)
		if !ok {
			return Path{}, attributeValueError(attribute, value)
		}
		err = mfs.Chtimes(path.hostName(), time.Time{}, t)
	case "posix:permissions":
		mode, ok := value.(fs.FileMode)
		if !ok {
			return Path{}, attributeValueError(attribute, value)
		}
		err = mfs.Chmod(path.hostName(), mode.Perm())
	case "posix:owner", "owner:owner":
		owner, ok := value.(UserPrincipal)
		if !ok {
			return Path{}, attributeValueError(attribute, value)
		}
		uid, idErr := principalID(owner.ID)
		if idErr != nil {
			return Path{}, idErr
		}
		err = chown(path.hostName(), uid, -1)
	case "posix:group":
		group, ok := value.(GroupPrincipal)
		if !ok {
			return Path{}, attributeValueError(attribute, value)
		}
		gid, idErr := principalID(group.ID)
		if idErr != nil {
			return Path{}, idErr
		}
		err = chown(path.hostName(), -1, gid)
	default:
		return Path{}, fserrors.WithContext(
			fserrors.Newf(fserrors.CodeUnsupported, "attribute %q cannot be set", attribute),
			"attribute", attribute)
	}
	if err != nil {
		return Path{}, hostError("setattr", path, err)
	}
	return path, nil
}

func metadataPath(op string, p any) (Path, core.MetadataFS, error) {
	path, err := writablePath(op, p)
	if err != nil {
		return Path{}, nil, err
	}
	mfs, ok := path.fsys.host.(core.MetadataFS)
	if !ok {
		return Path{}, nil, unsupported(op, path)
	}
	return path, mfs, nil
}

func attributeValueError(attribute string, value any) error {
	return fserrors.WithContextMap(
		fserrors.Newf(fserrors.CodeInvalidInput, "invalid value for attribute %q", attribute),
		map[string]any{"attribute": attribute, "type": fmt.Sprintf("%T", value)})
}
