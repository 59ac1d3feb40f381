package fstest

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/jmgilman/go/fspath/core"
)

// TestWriteFS tests Create, OpenFile, WriteFile, Mkdir and MkdirAll.
func TestWriteFS(t *testing.T, filesystem core.FS, root string) {
	t.Run("CreateAndWrite", func(t *testing.T) {
		name := join(root, "created.txt")
		f, err := filesystem.Create(name)
		if err != nil {
			t.Fatalf("Create(%q): got error %v, want nil", name, err)
		}
		if _, err := f.Write([]byte("hello")); err != nil {
			t.Fatalf("Write(): got error %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v", err)
		}
		if got := mustRead(t, filesystem, name); got != "hello" {
			t.Errorf("ReadFile(%q): got %q, want %q", name, got, "hello")
		}
	})

	t.Run("WriteFileTruncates", func(t *testing.T) {
		name := join(root, "truncate.txt")
		mustWrite(t, filesystem, name, "long original content")
		mustWrite(t, filesystem, name, "short")
		if got := mustRead(t, filesystem, name); got != "short" {
			t.Errorf("ReadFile(%q): got %q, want %q", name, got, "short")
		}
	})

	t.Run("Append", func(t *testing.T) {
		name := join(root, "append.txt")
		mustWrite(t, filesystem, name, "a")
		f, err := filesystem.OpenFile(name, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			t.Fatalf("OpenFile(%q, O_APPEND): got error %v", name, err)
		}
		_, _ = f.Write([]byte("b"))
		_ = f.Close()
		if got := mustRead(t, filesystem, name); got != "ab" {
			t.Errorf("ReadFile(%q): got %q, want %q", name, got, "ab")
		}
	})

	t.Run("ExclusiveOnExisting", func(t *testing.T) {
		name := join(root, "exclusive.txt")
		mustWrite(t, filesystem, name, "x")
		_, err := filesystem.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if !errors.Is(err, fs.ErrExist) {
			t.Errorf("OpenFile(%q, O_EXCL): got error %v, want fs.ErrExist", name, err)
		}
	})

	t.Run("CreateInMissingDir", func(t *testing.T) {
		name := join(root, "missing", "file.txt")
		_, err := filesystem.Create(name)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Create(%q): got error %v, want fs.ErrNotExist", name, err)
		}
		if ok, _ := filesystem.Exists(join(root, "missing")); ok {
			t.Errorf("Create(%q): parent directory was created implicitly", name)
		}
	})

	t.Run("OpenDirectoryForWrite", func(t *testing.T) {
		dir := join(root, "opendir")
		mustMkdir(t, filesystem, dir)
		_, err := filesystem.OpenFile(dir, os.O_WRONLY, 0)
		if !errors.Is(err, syscall.EISDIR) {
			t.Errorf("OpenFile(%q, O_WRONLY): got error %v, want EISDIR", dir, err)
		}
	})

	t.Run("Mkdir", func(t *testing.T) {
		dir := join(root, "newdir")
		if err := filesystem.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("Mkdir(%q): got error %v, want nil", dir, err)
		}
		if err := filesystem.Mkdir(dir, 0o755); !errors.Is(err, fs.ErrExist) {
			t.Errorf("Mkdir(%q) twice: got error %v, want fs.ErrExist", dir, err)
		}
		nested := join(root, "nope", "child")
		if err := filesystem.Mkdir(nested, 0o755); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Mkdir(%q): got error %v, want fs.ErrNotExist", nested, err)
		}
	})

	t.Run("MkdirAll", func(t *testing.T) {
		dir := join(root, "x", "y", "z")
		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): got error %v, want nil", dir, err)
		}
		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			t.Errorf("MkdirAll(%q) on existing: got error %v, want nil", dir, err)
		}
		info, err := filesystem.Stat(join(root, "x", "y"))
		if err != nil || !info.IsDir() {
			t.Errorf("Stat(%q): got %v, %v, want directory", join(root, "x", "y"), info, err)
		}
	})

	t.Run("MkdirAllThroughFile", func(t *testing.T) {
		file := join(root, "plain")
		mustWrite(t, filesystem, file, "")
		if err := filesystem.MkdirAll(join(file, "sub"), 0o755); !errors.Is(err, syscall.ENOTDIR) {
			t.Errorf("MkdirAll(%q): got error %v, want ENOTDIR", join(file, "sub"), err)
		}
	})
}
