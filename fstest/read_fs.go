package fstest

import (
	"errors"
	"io"
	"io/fs"
	"syscall"
	"testing"

	"github.com/jmgilman/go/fspath/core"
)

// TestReadFS tests Open, Stat, ReadDir, ReadFile and Exists.
func TestReadFS(t *testing.T, filesystem core.FS, root string) {
	dir := join(root, "testdir")
	file := join(dir, "testfile.txt")
	content := "test file content"

	mustMkdir(t, filesystem, dir)
	mustWrite(t, filesystem, file, content)
	mustWrite(t, filesystem, join(dir, "b.txt"), "b")
	mustMkdir(t, filesystem, join(dir, "a-sub"))

	t.Run("Open", func(t *testing.T) {
		f, err := filesystem.Open(file)
		if err != nil {
			t.Fatalf("Open(%q): got error %v, want nil", file, err)
		}
		defer func() { _ = f.Close() }()

		data, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll(): got error %v", err)
		}
		if string(data) != content {
			t.Errorf("Read(): got %q, want %q", data, content)
		}
	})

	t.Run("StatFile", func(t *testing.T) {
		info, err := filesystem.Stat(file)
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", file, err)
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			t.Errorf("Stat(%q): mode %v, want regular file", file, info.Mode())
		}
		if info.Size() != int64(len(content)) {
			t.Errorf("Stat(%q): Size() = %d, want %d", file, info.Size(), len(content))
		}
		if info.Name() != "testfile.txt" {
			t.Errorf("Stat(%q): Name() = %q, want %q", file, info.Name(), "testfile.txt")
		}
	})

	t.Run("StatDir", func(t *testing.T) {
		info, err := filesystem.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = false, want true", dir)
		}
	})

	t.Run("ReadDirSorted", func(t *testing.T) {
		entries, err := filesystem.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir(%q): got error %v, want nil", dir, err)
		}
		want := []string{"a-sub", "b.txt", "testfile.txt"}
		if len(entries) != len(want) {
			t.Fatalf("ReadDir(%q): got %d entries, want %d", dir, len(entries), len(want))
		}
		for i, e := range entries {
			if e.Name() != want[i] {
				t.Errorf("ReadDir(%q)[%d]: got %q, want %q", dir, i, e.Name(), want[i])
			}
		}
		if !entries[0].IsDir() {
			t.Errorf("ReadDir(%q): entry %q IsDir() = false, want true", dir, "a-sub")
		}
	})

	t.Run("ReadDirOnFile", func(t *testing.T) {
		_, err := filesystem.ReadDir(file)
		if !errors.Is(err, syscall.ENOTDIR) {
			t.Errorf("ReadDir(%q): got error %v, want ENOTDIR", file, err)
		}
	})

	t.Run("ReadFile", func(t *testing.T) {
		if got := mustRead(t, filesystem, file); got != content {
			t.Errorf("ReadFile(%q): got %q, want %q", file, got, content)
		}
	})

	t.Run("NotExist", func(t *testing.T) {
		missing := join(root, "nonexistent")
		if _, err := filesystem.Open(missing); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Open(%q): got error %v, want fs.ErrNotExist", missing, err)
		}
		if _, err := filesystem.Stat(missing); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Stat(%q): got error %v, want fs.ErrNotExist", missing, err)
		}
		var pe *fs.PathError
		if _, err := filesystem.Stat(missing); !errors.As(err, &pe) {
			t.Errorf("Stat(%q): got %T, want *fs.PathError", missing, err)
		}
		if _, err := filesystem.ReadDir(missing); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadDir(%q): got error %v, want fs.ErrNotExist", missing, err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		for name, want := range map[string]bool{
			file:                     true,
			dir:                      true,
			join(root, "nonexistent"): false,
		} {
			got, err := filesystem.Exists(name)
			if err != nil {
				t.Errorf("Exists(%q): got error %v, want nil", name, err)
				continue
			}
			if got != want {
				t.Errorf("Exists(%q): got %v, want %v", name, got, want)
			}
		}
	})
}
