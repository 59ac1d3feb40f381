package fspath

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/jmgilman/go/fspath/core"
	fserrors "github.com/jmgilman/go/fspath/errors"
)

const (
	viewBasic = "basic"
	viewPosix = "posix"
	viewOwner = "owner"
	viewUser  = "user"
)

var basicAttributes = []string{"size", "lastModifiedTime", "isDirectory", "isRegularFile", "isSymbolicLink", "isOther"}

// openPath coerces in and checks that its FileSystem is open.
func openPath(op string, in any) (Path, error) {
	p, err := ToPath(in)
	if err != nil {
		return Path{}, err
	}
	if err := p.fsys.checkOpen(op); err != nil {
		return Path{}, err
	}
	return p, nil
}

func statPath(op string, in any, opts []LinkOption) (Path, fs.FileInfo, error) {
	p, err := openPath(op, in)
	if err != nil {
		return Path{}, nil, err
	}
	info, err := p.fsys.stat(p.hostName(), !noFollow(opts))
	if err != nil {
		return p, nil, hostError(op, p, err)
	}
	return p, info, nil
}

// probe runs a predicate that reports false when the file cannot be read.
// Only coercion and closed FileSystem errors are returned.
func probe(op string, in any, opts []LinkOption, pred func(fs.FileInfo) bool) (bool, error) {
	p, err := openPath(op, in)
	if err != nil {
		return false, err
	}
	info, err := p.fsys.stat(p.hostName(), !noFollow(opts))
	if err != nil {
		return false, nil
	}
	return pred(info), nil
}

// Exists reports whether p exists. It reports false when existence cannot be
// determined.
func Exists(p any, opts ...LinkOption) (bool, error) {
	return probe("exists", p, opts, func(fs.FileInfo) bool { return true })
}

// NotExists reports whether p is confirmed not to exist.
func NotExists(p any, opts ...LinkOption) (bool, error) {
	path, err := openPath("exists", p)
	if err != nil {
		return false, err
	}
	_, err = path.fsys.stat(path.hostName(), !noFollow(opts))
	return errors.Is(err, fs.ErrNotExist), nil
}

// IsDirectory reports whether p is a directory.
func IsDirectory(p any, opts ...LinkOption) (bool, error) {
	return probe("isdir", p, opts, fs.FileInfo.IsDir)
}

// IsRegularFile reports whether p is a regular file.
func IsRegularFile(p any, opts ...LinkOption) (bool, error) {
	return probe("isregular", p, opts, func(info fs.FileInfo) bool { return info.Mode().IsRegular() })
}

// IsSymbolicLink reports whether p is a symbolic link.
func IsSymbolicLink(p any) (bool, error) {
	return probe("issymlink", p, []LinkOption{NoFollowLinks}, func(info fs.FileInfo) bool {
		return info.Mode()&fs.ModeSymlink != 0
	})
}

// IsHidden reports whether the file name of p starts with a dot.
func IsHidden(p any) (bool, error) {
	path, err := ToPath(p)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(path.FileName().String(), "."), nil
}

// IsReadable reports whether the process can read p.
func IsReadable(p any) (bool, error) {
	return checkAccess(p, core.AccessRead, 0o444)
}

// IsWritable reports whether the process can write p.
func IsWritable(p any) (bool, error) {
	return checkAccess(p, core.AccessWrite, 0o222)
}

// IsExecutable reports whether the process can execute or search p.
func IsExecutable(p any) (bool, error) {
	return checkAccess(p, core.AccessExecute, 0o111)
}

// checkAccess asks the host when it supports access checks and falls back to
// the permission bits otherwise.
func checkAccess(in any, mode core.AccessMode, bits fs.FileMode) (bool, error) {
	p, err := openPath("access", in)
	if err != nil {
		return false, err
	}
	if afs, ok := p.fsys.host.(core.AccessFS); ok {
		return afs.Access(p.hostName(), mode) == nil, nil
	}
	info, err := p.fsys.host.Stat(p.hostName())
	if err != nil {
		return false, nil
	}
	return info.Mode().Perm()&bits != 0, nil
}

// IsSameFile reports whether a and b locate the same file. Equal Paths are
// the same file without any I/O.
func IsSameFile(a, b any) (bool, error) {
	pa, err := openPath("samefile", a)
	if err != nil {
		return false, err
	}
	pb, err := otherPath(pa, b)
	if err != nil {
		return false, err
	}
	if pa == pb {
		return true, nil
	}
	if pa.fsys != pb.fsys {
		return false, nil
	}
	ia, err := pa.fsys.host.Stat(pa.hostName())
	if err != nil {
		return false, hostError("samefile", pa, err)
	}
	ib, err := pb.fsys.host.Stat(pb.hostName())
	if err != nil {
		return false, hostError("samefile", pb, err)
	}
	if os.SameFile(ia, ib) {
		return true, nil
	}
	ra, err := pa.fsys.realPath(pa, true)
	if err != nil {
		return false, err
	}
	rb, err := pb.fsys.realPath(pb, true)
	if err != nil {
		return false, err
	}
	return ra == rb, nil
}

// Size returns the size of p in bytes.
func Size(p any) (int64, error) {
	_, info, err := statPath("size", p, nil)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// LastModifiedTime returns the modification time of p.
func LastModifiedTime(p any, opts ...LinkOption) (time.Time, error) {
	_, info, err := statPath("mtime", p, opts)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// PosixPermissions returns the permission bits of p.
func PosixPermissions(p any, opts ...LinkOption) (fs.FileMode, error) {
	_, info, err := statPath("permissions", p, opts)
	if err != nil {
		return 0, err
	}
	return info.Mode().Perm(), nil
}

// Owner returns the owner of p.
func Owner(p any, opts ...LinkOption) (UserPrincipal, error) {
	path, err := openPath("owner", p)
	if err != nil {
		return UserPrincipal{}, err
	}
	uid, _, err := path.fsys.owner(path, !noFollow(opts))
	if err != nil {
		return UserPrincipal{}, err
	}
	return userByID(uid), nil
}

func (fsys *FileSystem) owner(p Path, follow bool) (int, int, error) {
	ofs, ok := fsys.host.(core.OwnerFS)
	if !ok {
		return 0, 0, unsupported("owner", p)
	}
	uid, gid, err := ofs.Owner(p.hostName(), follow)
	if err != nil {
		return 0, 0, hostError("owner", p, err)
	}
	return uid, gid, nil
}

// ReadSymbolicLink returns the target of the link p, parsed in p's
// FileSystem. A p that is not a link fails with CodeNotLink.
func ReadSymbolicLink(p any) (Path, error) {
	path, err := openPath("readlink", p)
	if err != nil {
		return Path{}, err
	}
	sfs, ok := path.fsys.host.(core.SymlinkFS)
	if !ok {
		return Path{}, unsupported("readlink", path)
	}
	target, err := sfs.Readlink(path.hostName())
	if err != nil {
		wrapped := hostError("readlink", path, err)
		if fserrors.HasCode(wrapped, fserrors.CodeInvalidInput) {
			return Path{}, fserrors.WrapWithContext(err, fserrors.CodeNotLink, "not a symbolic link",
				map[string]any{"op": "readlink", "path": path.String()})
		}
		return Path{}, wrapped
	}
	return path.fsys.Path(target)
}

// GetFileStore returns the store containing p.
func GetFileStore(p any) (*FileStore, error) {
	path, err := openPath("filestore", p)
	if err != nil {
		return nil, err
	}
	sfs, ok := path.fsys.host.(core.StoreFS)
	if !ok {
		return nil, unsupported("filestore", path)
	}
	store, err := sfs.StoreOf(path.hostName())
	if err != nil {
		return nil, hostError("filestore", path, err)
	}
	return &FileStore{store: store, fsys: path.fsys}, nil
}

// Attribute reads one attribute named "view:name" or "name" (basic view).
//
// Example:
//
//	size, _ := fspath.Attribute("/etc/hosts", "basic:size")
func Attribute(p any, attribute string, opts ...LinkOption) (any, error) {
	view, name := splitAttribute(attribute)
	if name == "*" || strings.Contains(name, ",") {
		return nil, invalidAttribute(attribute)
	}
	attrs, err := ReadAttributes(p, view+":"+name, opts...)
	if err != nil {
		return nil, err
	}
	return attrs[name], nil
}

// ReadAttributes reads a set of attributes given as "view:a,b,c" or "view:*".
// The view defaults to basic. The views are:
//
//   - basic: size, lastModifiedTime, isDirectory, isRegularFile,
//     isSymbolicLink, isOther
//   - posix: basic plus permissions, owner, group
//   - owner: owner
//   - user: extended attributes in the "user." namespace, as []byte
func ReadAttributes(p any, attributes string, opts ...LinkOption) (map[string]any, error) {
	path, info, err := statPath("attributes", p, opts)
	if err != nil {
		return nil, err
	}
	view, names := splitAttribute(attributes)
	follow := !noFollow(opts)

	switch view {
	case viewBasic:
		return selectAttributes(attributes, names, basicAttributes, func(n string) (any, error) {
			return basicAttribute(info, n), nil
		})
	case viewPosix:
		all := append(slices.Clone(basicAttributes), "permissions", "owner", "group")
		return selectAttributes(attributes, names, all, func(n string) (any, error) {
			switch n {
			case "permissions":
				return info.Mode().Perm(), nil
			case "owner", "group":
				uid, gid, err := path.fsys.owner(path, follow)
				if err != nil {
					return nil, err
				}
				if n == "owner" {
					return userByID(uid), nil
				}
				return groupByID(gid), nil
			default:
				return basicAttribute(info, n), nil
			}
		})
	case viewOwner:
		return selectAttributes(attributes, names, []string{"owner"}, func(string) (any, error) {
			uid, _, err := path.fsys.owner(path, follow)
			if err != nil {
				return nil, err
			}
			return userByID(uid), nil
		})
	case viewUser:
		return readUserAttributes(path, names)
	default:
		return nil, fserrors.WithContext(
			fserrors.Newf(fserrors.CodeUnsupported, "attribute view %q is not available", view),
			"view", view)
	}
}

func splitAttribute(attribute string) (view, names string) {
	if i := strings.IndexByte(attribute, ':'); i >= 0 {
		return attribute[:i], attribute[i+1:]
	}
	return viewBasic, attribute
}

func selectAttributes(attribute, names string, all []string, read func(string) (any, error)) (map[string]any, error) {
	wanted := strings.Split(names, ",")
	if names == "*" {
		wanted = all
	}
	out := make(map[string]any, len(wanted))
	for _, n := range wanted {
		if !slices.Contains(all, n) {
			return nil, invalidAttribute(attribute)
		}
		v, err := read(n)
		if err != nil {
			return nil, err
		}
		out[n] = v
	}
	return out, nil
}

func basicAttribute(info fs.FileInfo, name string) any {
	mode := info.Mode()
	switch name {
	case "size":
		return info.Size()
	case "lastModifiedTime":
		return info.ModTime()
	case "isDirectory":
		return mode.IsDir()
	case "isRegularFile":
		return mode.IsRegular()
	case "isSymbolicLink":
		return mode&fs.ModeSymlink != 0
	case "isOther":
		return !mode.IsDir() && !mode.IsRegular() && mode&fs.ModeSymlink == 0
	}
	return nil
}

func readUserAttributes(p Path, names string) (map[string]any, error) {
	xfs, ok := p.fsys.host.(core.XattrFS)
	if !ok {
		return nil, unsupported("getxattr", p)
	}
	var wanted []string
	if names == "*" {
		all, err := xfs.ListXattr(p.hostName())
		if err != nil {
			return nil, hostError("listxattr", p, err)
		}
		for _, attr := range all {
			if name, ok := strings.CutPrefix(attr, "user."); ok {
				wanted = append(wanted, name)
			}
		}
	} else {
		wanted = strings.Split(names, ",")
	}

	out := make(map[string]any, len(wanted))
	for _, name := range wanted {
		data, err := xfs.GetXattr(p.hostName(), "user."+name)
		if err != nil {
			return nil, hostError("getxattr", p, err)
		}
		out[name] = data
	}
	return out, nil
}

func invalidAttribute(attribute string) error {
	return fserrors.WithContext(
		fserrors.Newf(fserrors.CodeInvalidInput, "unknown attribute %q", attribute),
		"attribute", attribute)
}
