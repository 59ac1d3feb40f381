package fstest

import (
	"errors"
	"io/fs"
	"syscall"
	"testing"

	"github.com/jmgilman/go/fspath/core"
)

// TestManageFS tests Remove and Rename.
func TestManageFS(t *testing.T, filesystem core.FS, root string) {
	t.Run("RemoveFile", func(t *testing.T) {
		name := join(root, "remove.txt")
		mustWrite(t, filesystem, name, "x")
		if err := filesystem.Remove(name); err != nil {
			t.Fatalf("Remove(%q): got error %v, want nil", name, err)
		}
		if _, err := filesystem.Stat(name); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Stat(%q) after Remove: got error %v, want fs.ErrNotExist", name, err)
		}
	})

	t.Run("RemoveEmptyDir", func(t *testing.T) {
		dir := join(root, "emptydir")
		mustMkdir(t, filesystem, dir)
		if err := filesystem.Remove(dir); err != nil {
			t.Errorf("Remove(%q): got error %v, want nil", dir, err)
		}
	})

	t.Run("RemoveNonEmptyDir", func(t *testing.T) {
		dir := join(root, "full")
		mustMkdir(t, filesystem, dir)
		mustWrite(t, filesystem, join(dir, "child"), "x")
		err := filesystem.Remove(dir)
		if !errors.Is(err, syscall.ENOTEMPTY) && !errors.Is(err, syscall.EEXIST) {
			t.Errorf("Remove(%q): got error %v, want ENOTEMPTY", dir, err)
		}
		if ok, _ := filesystem.Exists(join(dir, "child")); !ok {
			t.Errorf("Remove(%q): child was removed", dir)
		}
	})

	t.Run("RemoveNotExist", func(t *testing.T) {
		name := join(root, "ghost")
		if err := filesystem.Remove(name); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Remove(%q): got error %v, want fs.ErrNotExist", name, err)
		}
	})

	t.Run("RenameFile", func(t *testing.T) {
		from, to := join(root, "from.txt"), join(root, "to.txt")
		mustWrite(t, filesystem, from, "moved")
		if err := filesystem.Rename(from, to); err != nil {
			t.Fatalf("Rename(%q, %q): got error %v, want nil", from, to, err)
		}
		if ok, _ := filesystem.Exists(from); ok {
			t.Errorf("Rename: source %q still exists", from)
		}
		if got := mustRead(t, filesystem, to); got != "moved" {
			t.Errorf("ReadFile(%q): got %q, want %q", to, got, "moved")
		}
	})

	t.Run("RenameReplacesFile", func(t *testing.T) {
		from, to := join(root, "new.txt"), join(root, "old.txt")
		mustWrite(t, filesystem, from, "new")
		mustWrite(t, filesystem, to, "old")
		if err := filesystem.Rename(from, to); err != nil {
			t.Fatalf("Rename(%q, %q): got error %v, want nil", from, to, err)
		}
		if got := mustRead(t, filesystem, to); got != "new" {
			t.Errorf("ReadFile(%q): got %q, want %q", to, got, "new")
		}
	})

	t.Run("RenameDirectory", func(t *testing.T) {
		from, to := join(root, "srcdir"), join(root, "dstdir")
		mustMkdir(t, filesystem, join(from, "nested"))
		mustWrite(t, filesystem, join(from, "nested", "f.txt"), "deep")
		if err := filesystem.Rename(from, to); err != nil {
			t.Fatalf("Rename(%q, %q): got error %v, want nil", from, to, err)
		}
		if got := mustRead(t, filesystem, join(to, "nested", "f.txt")); got != "deep" {
			t.Errorf("ReadFile after directory rename: got %q, want %q", got, "deep")
		}
		if ok, _ := filesystem.Exists(from); ok {
			t.Errorf("Rename: source %q still exists", from)
		}
	})

	t.Run("RenameLeavesPrefixSiblings", func(t *testing.T) {
		from, sibling, to := join(root, "p"), join(root, "p.txt"), join(root, "q")
		mustMkdir(t, filesystem, from)
		mustWrite(t, filesystem, sibling, "keep")
		if err := filesystem.Rename(from, to); err != nil {
			t.Fatalf("Rename(%q, %q): got error %v, want nil", from, to, err)
		}
		if got := mustRead(t, filesystem, sibling); got != "keep" {
			t.Errorf("ReadFile(%q): got %q, want %q", sibling, got, "keep")
		}
	})

	t.Run("RenameIntoMissingDir", func(t *testing.T) {
		from, to := join(root, "stay.txt"), join(root, "nodir", "stay.txt")
		mustWrite(t, filesystem, from, "x")
		if err := filesystem.Rename(from, to); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Rename(%q, %q): got error %v, want fs.ErrNotExist", from, to, err)
		}
	})
}
