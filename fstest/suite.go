// Package fstest provides a conformance test suite for hosts implementing
// the core.FS contract and its optional capabilities.
//
// Hosts call TestSuite from their own tests with a constructor that returns
// a fresh host and an existing, empty directory to work in:
//
//	func TestMemoryFS(t *testing.T) {
//	    fstest.TestSuite(t, func(t *testing.T) (core.FS, string) {
//	        mem := billy.NewMemory()
//	        _ = mem.MkdirAll("/work", 0o755)
//	        return mem, "/work"
//	    })
//	}
//
// Optional capabilities (MetadataFS, SymlinkFS, TempFS, WatchFS) are tested
// when the host implements them. Flag combinations a host rejects with
// core.ErrUnsupported are skipped.
package fstest

import (
	"path"
	"testing"

	"github.com/jmgilman/go/fspath/core"
)

// NewFunc returns a fresh host and the absolute name of an empty directory
// the tests may populate.
type NewFunc func(t *testing.T) (core.FS, string)

// TestSuite runs every applicable conformance test against a host.
func TestSuite(t *testing.T, newFS NewFunc) {
	t.Run("ReadFS", func(t *testing.T) {
		filesystem, root := newFS(t)
		TestReadFS(t, filesystem, root)
	})
	t.Run("WriteFS", func(t *testing.T) {
		filesystem, root := newFS(t)
		TestWriteFS(t, filesystem, root)
	})
	t.Run("ManageFS", func(t *testing.T) {
		filesystem, root := newFS(t)
		TestManageFS(t, filesystem, root)
	})
	t.Run("OpenFileFlags", func(t *testing.T) {
		filesystem, root := newFS(t)
		TestOpenFileFlags(t, filesystem, root)
	})
	t.Run("MetadataFS", func(t *testing.T) {
		filesystem, root := newFS(t)
		mfs, ok := filesystem.(core.MetadataFS)
		if !ok {
			t.Skip("host does not implement core.MetadataFS")
		}
		TestMetadataFS(t, filesystem, mfs, root)
	})
	t.Run("SymlinkFS", func(t *testing.T) {
		filesystem, root := newFS(t)
		sfs, ok := filesystem.(core.SymlinkFS)
		if !ok {
			t.Skip("host does not implement core.SymlinkFS")
		}
		TestSymlinkFS(t, filesystem, sfs, root)
	})
	t.Run("TempFS", func(t *testing.T) {
		filesystem, root := newFS(t)
		tfs, ok := filesystem.(core.TempFS)
		if !ok {
			t.Skip("host does not implement core.TempFS")
		}
		TestTempFS(t, filesystem, tfs, root)
	})
	t.Run("WatchFS", func(t *testing.T) {
		filesystem, root := newFS(t)
		wfs, ok := filesystem.(core.WatchFS)
		if !ok {
			t.Skip("host does not implement core.WatchFS")
		}
		TestWatchFS(t, filesystem, wfs, root)
	})
}

func join(root string, elem ...string) string {
	return path.Join(append([]string{root}, elem...)...)
}

func mustWrite(t *testing.T, filesystem core.FS, name, content string) {
	t.Helper()
	if err := filesystem.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q): setup failed: %v", name, err)
	}
}

func mustMkdir(t *testing.T, filesystem core.FS, name string) {
	t.Helper()
	if err := filesystem.MkdirAll(name, 0o755); err != nil {
		t.Fatalf("MkdirAll(%q): setup failed: %v", name, err)
	}
}

func mustRead(t *testing.T, filesystem core.FS, name string) string {
	t.Helper()
	data, err := filesystem.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile(%q): got error %v, want nil", name, err)
	}
	return string(data)
}
