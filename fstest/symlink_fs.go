package fstest

import (
	"errors"
	"io/fs"
	"syscall"
	"testing"

	"github.com/jmgilman/go/fspath/core"
)

// TestSymlinkFS tests Symlink, Readlink and Lstat along with link
// resolution by the core operations.
func TestSymlinkFS(t *testing.T, filesystem core.FS, sfs core.SymlinkFS, root string) {
	target := join(root, "target.txt")
	mustWrite(t, filesystem, target, "through the link")
	mustMkdir(t, filesystem, join(root, "realdir"))
	mustWrite(t, filesystem, join(root, "realdir", "inner.txt"), "inner")

	t.Run("CreateAndRead", func(t *testing.T) {
		link := join(root, "link")
		if err := sfs.Symlink("target.txt", link); err != nil {
			t.Fatalf("Symlink(%q): got error %v, want nil", link, err)
		}
		got, err := sfs.Readlink(link)
		if err != nil {
			t.Fatalf("Readlink(%q): got error %v, want nil", link, err)
		}
		if got != "target.txt" {
			t.Errorf("Readlink(%q): got %q, want %q", link, got, "target.txt")
		}
		if content := mustRead(t, filesystem, link); content != "through the link" {
			t.Errorf("ReadFile(%q): got %q, want %q", link, content, "through the link")
		}

		info, err := sfs.Lstat(link)
		if err != nil {
			t.Fatalf("Lstat(%q): got error %v", link, err)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			t.Errorf("Lstat(%q): mode %v, want symlink", link, info.Mode())
		}
		info, err = filesystem.Stat(link)
		if err != nil {
			t.Fatalf("Stat(%q): got error %v", link, err)
		}
		if !info.Mode().IsRegular() {
			t.Errorf("Stat(%q): mode %v, want regular file", link, info.Mode())
		}
	})

	t.Run("AbsoluteTarget", func(t *testing.T) {
		link := join(root, "abslink")
		if err := sfs.Symlink(target, link); err != nil {
			t.Fatalf("Symlink(%q): got error %v", link, err)
		}
		got, _ := sfs.Readlink(link)
		if got != target {
			t.Errorf("Readlink(%q): got %q, want %q", link, got, target)
		}
	})

	t.Run("IntermediateComponent", func(t *testing.T) {
		link := join(root, "dirlink")
		if err := sfs.Symlink("realdir", link); err != nil {
			t.Fatalf("Symlink(%q): got error %v", link, err)
		}
		if content := mustRead(t, filesystem, join(link, "inner.txt")); content != "inner" {
			t.Errorf("ReadFile through directory link: got %q, want %q", content, "inner")
		}
		entries, err := filesystem.ReadDir(link)
		if err != nil || len(entries) != 1 {
			t.Errorf("ReadDir(%q): got %d entries, %v, want 1 entry", link, len(entries), err)
		}
	})

	t.Run("Dangling", func(t *testing.T) {
		link := join(root, "dangling")
		if err := sfs.Symlink("nowhere", link); err != nil {
			t.Fatalf("Symlink(%q): got error %v", link, err)
		}
		if _, err := sfs.Lstat(link); err != nil {
			t.Errorf("Lstat(%q): got error %v, want nil", link, err)
		}
		if _, err := filesystem.Stat(link); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Stat(%q): got error %v, want fs.ErrNotExist", link, err)
		}
	})

	t.Run("Loop", func(t *testing.T) {
		a, b := join(root, "loop-a"), join(root, "loop-b")
		if err := sfs.Symlink("loop-b", a); err != nil {
			t.Fatalf("Symlink(%q): got error %v", a, err)
		}
		if err := sfs.Symlink("loop-a", b); err != nil {
			t.Fatalf("Symlink(%q): got error %v", b, err)
		}
		if _, err := filesystem.Stat(a); !errors.Is(err, syscall.ELOOP) {
			t.Errorf("Stat(%q): got error %v, want ELOOP", a, err)
		}
	})

	t.Run("Existing", func(t *testing.T) {
		if err := sfs.Symlink("x", target); !errors.Is(err, fs.ErrExist) {
			t.Errorf("Symlink over %q: got error %v, want fs.ErrExist", target, err)
		}
	})

	t.Run("ReadlinkNotLink", func(t *testing.T) {
		if _, err := sfs.Readlink(target); err == nil {
			t.Errorf("Readlink(%q): got nil error, want error", target)
		}
	})
}
