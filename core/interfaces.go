package core

import (
	"io"
	"io/fs"
)

// FSType represents the underlying type of filesystem implementation.
type FSType int

const (
	// FSTypeUnknown indicates the filesystem type is unknown or unspecified.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates the operating system's filesystem.
	FSTypeLocal
	// FSTypeMemory indicates an in-memory filesystem.
	FSTypeMemory
	// FSTypeObject indicates an S3-compatible object store.
	FSTypeObject
)

// String returns a string representation of the FSType.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	case FSTypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// FS is the contract every host must implement.
// FS embeds fs.FS so hosts can be handed to io/fs helpers.
type FS interface {
	fs.FS
	ReadFS
	WriteFS
	ManageFS

	// Type returns the underlying filesystem type.
	Type() FSType
}

// ReadFS defines read-only filesystem operations.
type ReadFS interface {
	// Open opens the named file for reading.
	// Callers can type-assert the result to File.
	Open(name string) (fs.File, error)

	// Stat returns file metadata, following symbolic links.
	Stat(name string) (fs.FileInfo, error)

	// ReadDir returns the entries of the named directory sorted by name.
	//
	// A failure part way through the listing may return the entries read so
	// far together with the error. A non-directory yields ENOTDIR.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the named file or directory exists.
	// A false result with a non-nil error means existence could not be determined.
	Exists(name string) (bool, error)
}

// WriteFS defines write operations.
//
// Creating an entry whose parent directory does not exist fails with
// fs.ErrNotExist; parents are never created implicitly except by MkdirAll.
type WriteFS interface {
	// Create creates or truncates the named file for writing.
	Create(name string) (File, error)

	// OpenFile opens a file with os-style flags and permissions.
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)

	// WriteFile writes data to the named file, creating or truncating it.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Mkdir creates a single directory. An existing entry yields fs.ErrExist.
	Mkdir(name string, perm fs.FileMode) error

	// MkdirAll creates a directory along with any necessary parents.
	// An existing directory is not an error; an existing non-directory
	// component yields ENOTDIR.
	MkdirAll(path string, perm fs.FileMode) error
}

// ManageFS defines structural changes.
type ManageFS interface {
	// Remove removes the named file or empty directory.
	// A non-empty directory yields ENOTEMPTY.
	Remove(name string) error

	// Rename moves oldpath to newpath, replacing newpath if it is a file.
	// Moves across devices yield EXDEV.
	Rename(oldpath, newpath string) error
}

// File represents an open file handle.
type File interface {
	fs.File
	io.Writer

	// Name returns the name of the file as provided to Open or Create.
	Name() string
}

// Truncater allows truncating a file to a specified size.
type Truncater interface {
	Truncate(size int64) error
}

// Syncer allows syncing file contents to stable storage.
type Syncer interface {
	Sync() error
}
