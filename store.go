package fspath

import (
	"fmt"

	"github.com/jmgilman/go/fspath/core"
)

// FileStore describes a storage volume of a FileSystem.
type FileStore struct {
	store core.Store
	fsys  *FileSystem
}

// Name returns the device or source name.
func (s *FileStore) Name() string { return s.store.Name }

// Type returns the volume type, such as "ext4".
func (s *FileStore) Type() string { return s.store.Type }

// Mount returns the mount point as a Path.
func (s *FileStore) Mount() Path { return newPath(s.fsys, s.store.Mount) }

// IsReadOnly reports whether the volume is mounted read-only.
func (s *FileStore) IsReadOnly() bool { return s.store.ReadOnly }

// TotalSpace returns the volume size in bytes.
func (s *FileStore) TotalSpace() int64 { return s.store.Total }

// UsableSpace returns the bytes available to the process.
func (s *FileStore) UsableSpace() int64 { return s.store.Usable }

// UnallocatedSpace returns the free bytes.
func (s *FileStore) UnallocatedSpace() int64 { return s.store.Unallocated }

// SupportsFileAttributeView reports whether ReadAttributes accepts view for
// files in this store.
func (s *FileStore) SupportsFileAttributeView(view string) bool {
	for _, v := range s.fsys.SupportedAttributeViews() {
		if v == view {
			return true
		}
	}
	return false
}

func (s *FileStore) String() string {
	return fmt.Sprintf("%s (%s)", s.store.Mount, s.store.Name)
}
