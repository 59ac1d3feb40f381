package core

import (
	"io"
	"io/fs"
	"time"
)

// SymlinkFS defines symbolic link operations.
type SymlinkFS interface {
	// Lstat returns file info without following a terminal symbolic link.
	Lstat(name string) (fs.FileInfo, error)

	// Symlink creates newname as a symbolic link to oldname.
	// The oldname text is stored as-is and may dangle.
	Symlink(oldname, newname string) error

	// Readlink returns the destination of the named symbolic link.
	Readlink(name string) (string, error)
}

// MetadataFS defines metadata mutations.
type MetadataFS interface {
	// Chmod changes the permission bits of the named file.
	Chmod(name string, mode fs.FileMode) error

	// Chown changes the numeric owner and group, following links.
	// A value of -1 leaves the id unchanged.
	Chown(name string, uid, gid int) error

	// Lchown is Chown without following a terminal symbolic link.
	Lchown(name string, uid, gid int) error

	// Chtimes changes the access and modification times.
	// A zero time leaves the corresponding value unchanged.
	Chtimes(name string, atime, mtime time.Time) error
}

// LinkFS defines hard link creation.
type LinkFS interface {
	// Link creates newname as a hard link to oldname.
	Link(oldname, newname string) error
}

// OwnerFS reports file ownership.
type OwnerFS interface {
	// Owner returns the numeric user and group ids of the named file.
	// When follow is false a terminal symbolic link is not followed.
	Owner(name string, follow bool) (uid, gid int, err error)
}

// AccessMode is a bitmask of access checks.
type AccessMode uint32

const (
	// AccessRead checks read permission.
	AccessRead AccessMode = 1 << iota
	// AccessWrite checks write permission.
	AccessWrite
	// AccessExecute checks execute or search permission.
	AccessExecute
)

// AccessFS checks effective access for the calling process.
type AccessFS interface {
	// Access returns nil if every requested mode is granted.
	Access(name string, mode AccessMode) error
}

// XattrFS defines extended attribute operations.
type XattrFS interface {
	GetXattr(name, attr string) ([]byte, error)
	SetXattr(name, attr string, data []byte) error
	ListXattr(name string) ([]string, error)
}

// TempFS defines temporary file and directory creation.
type TempFS interface {
	// TempFile creates a new file in dir and opens it for reading and writing.
	// A "*" in pattern is replaced by a random string; otherwise the string is
	// appended. An empty dir selects the host's default temporary directory.
	TempFile(dir, pattern string) (File, error)

	// TempDir creates a new directory in dir and returns its name.
	TempDir(dir, pattern string) (string, error)
}

// Store describes a mounted volume.
type Store struct {
	// Name is the device or source name.
	Name string
	// Type is the filesystem type, such as "ext4" or "tmpfs".
	Type string
	// Mount is the absolute mount point.
	Mount string
	// Total, Usable and Unallocated are capacities in bytes.
	Total       int64
	Usable      int64
	Unallocated int64
	// ReadOnly reports whether the store is mounted read-only.
	ReadOnly bool
}

// StoreFS enumerates stores.
type StoreFS interface {
	// Stores returns every store known to the host.
	Stores() ([]Store, error)

	// StoreOf returns the store containing the named file.
	StoreOf(name string) (Store, error)
}

// AtomicWriteFS replaces file content atomically.
type AtomicWriteFS interface {
	// WriteFileAtomic writes r to a staging file next to name and renames it
	// into place, so readers observe either the old or the new content.
	WriteFileAtomic(name string, r io.Reader) error
}
