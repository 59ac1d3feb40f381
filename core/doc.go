// Package core defines the host filesystem contract that fspath delegates to.
//
// A host is any value implementing FS. The required surface is small: reading
// (ReadFS), writing (WriteFS) and structural changes (ManageFS). Everything
// else is an optional capability discovered by type assertion:
//
//   - SymlinkFS: Lstat, Symlink, Readlink
//   - MetadataFS: Chmod, Chown, Lchown, Chtimes
//   - LinkFS: hard links
//   - OwnerFS: numeric owner and group of a file
//   - AccessFS: effective read/write/execute checks
//   - XattrFS: extended attributes
//   - TempFS: temporary files and directories
//   - StoreFS: file stores (mounted volumes) and their capacity
//   - AtomicWriteFS: replace a file's content atomically
//   - WatchFS: change notification
//
// # Names
//
// Hosts receive absolute, slash-separated names ("/var/log/app.log"). Relative
// names are resolved by the caller before the call is made.
//
// # Errors
//
// Failures are reported as *fs.PathError values wrapping the io/fs sentinels
// (fs.ErrNotExist, fs.ErrExist, fs.ErrPermission) or a syscall.Errno such as
// ENOTEMPTY, ENOTDIR, EISDIR or EXDEV, so callers can classify them with
// errors.Is. A missing optional capability is reported as ErrUnsupported.
//
// This package has no dependencies outside the standard library.
package core
