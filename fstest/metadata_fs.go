package fstest

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/jmgilman/go/fspath/core"
)

// TestMetadataFS tests Chmod, Chown, Lchown and Chtimes.
func TestMetadataFS(t *testing.T, filesystem core.FS, mfs core.MetadataFS, root string) {
	file := join(root, "meta.txt")
	dir := join(root, "metadir")
	missing := join(root, "missing.txt")
	mustWrite(t, filesystem, file, "metadata")
	mustMkdir(t, filesystem, dir)

	t.Run("Chmod", func(t *testing.T) {
		if err := mfs.Chmod(file, 0o600); err != nil {
			t.Fatalf("Chmod(%q, 0600): got error %v, want nil", file, err)
		}
		info, err := filesystem.Stat(file)
		if err != nil {
			t.Fatalf("Stat(%q): got error %v", file, err)
		}
		if got := info.Mode().Perm(); got != 0o600 {
			t.Errorf("Stat(%q) after Chmod: perm %v, want %v", file, got, fs.FileMode(0o600))
		}
		if got := mustRead(t, filesystem, file); got != "metadata" {
			t.Errorf("ReadFile(%q) after Chmod: got %q, want %q", file, got, "metadata")
		}

		if err := mfs.Chmod(dir, 0o700); err != nil {
			t.Fatalf("Chmod(%q, 0700): got error %v", dir, err)
		}
		info, err = filesystem.Stat(dir)
		if err != nil || !info.IsDir() || info.Mode().Perm() != 0o700 {
			t.Errorf("Stat(%q) after Chmod: got %v, %v, want directory with perm 0700", dir, info, err)
		}

		if err := mfs.Chmod(missing, 0o644); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Chmod(%q): got error %v, want fs.ErrNotExist", missing, err)
		}
	})

	t.Run("Chtimes", func(t *testing.T) {
		atime := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
		mtime := time.Date(2024, time.February, 20, 14, 45, 30, 0, time.UTC)
		if err := mfs.Chtimes(file, atime, mtime); err != nil {
			t.Fatalf("Chtimes(%q): got error %v, want nil", file, err)
		}
		info, err := filesystem.Stat(file)
		if err != nil {
			t.Fatalf("Stat(%q): got error %v", file, err)
		}
		if !info.ModTime().Equal(mtime) {
			t.Errorf("Stat(%q) after Chtimes: mtime %v, want %v", file, info.ModTime(), mtime)
		}

		// a zero time leaves the value alone
		if err := mfs.Chtimes(file, atime, time.Time{}); err != nil {
			t.Fatalf("Chtimes(%q, zero mtime): got error %v", file, err)
		}
		info, _ = filesystem.Stat(file)
		if !info.ModTime().Equal(mtime) {
			t.Errorf("Stat(%q) after zero Chtimes: mtime %v, want %v", file, info.ModTime(), mtime)
		}

		if err := mfs.Chtimes(missing, atime, mtime); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Chtimes(%q): got error %v, want fs.ErrNotExist", missing, err)
		}
	})

	t.Run("ChownUnchanged", func(t *testing.T) {
		if err := mfs.Chown(file, -1, -1); err != nil {
			t.Errorf("Chown(%q, -1, -1): got error %v, want nil", file, err)
		}
		if err := mfs.Lchown(file, -1, -1); err != nil {
			t.Errorf("Lchown(%q, -1, -1): got error %v, want nil", file, err)
		}
		if err := mfs.Chown(missing, -1, -1); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Chown(%q): got error %v, want fs.ErrNotExist", missing, err)
		}
	})
}
