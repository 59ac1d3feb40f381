package faultfs

import (
	"errors"
	"io/fs"
	"syscall"
	"testing"

	"github.com/jmgilman/go/fspath/billy"
)

func newHost(t *testing.T) *FS {
	t.Helper()
	host := billy.NewMemory()
	if err := host.MkdirAll("/d", 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	for _, name := range []string{"/d/a", "/d/b", "/d/c"} {
		if err := host.WriteFile(name, []byte(name), 0o644); err != nil {
			t.Fatalf("WriteFile(%q) error = %v", name, err)
		}
	}
	return New(host)
}

func TestFail(t *testing.T) {
	f := newHost(t)
	f.Fail("stat", "/d/a/", syscall.EBUSY)

	_, err := f.Stat("/d/a")
	if !errors.Is(err, syscall.EBUSY) {
		t.Fatalf("Stat() error = %v, want EBUSY", err)
	}
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) || pathErr.Op != "stat" {
		t.Errorf("Stat() error = %#v, want *fs.PathError with op stat", err)
	}

	// other ops and names are forwarded
	if _, err := f.Lstat("/d/a"); err != nil {
		t.Errorf("Lstat() error = %v", err)
	}
	if _, err := f.Stat("/d/b"); err != nil {
		t.Errorf("Stat(/d/b) error = %v", err)
	}
}

func TestFailReadDir(t *testing.T) {
	f := newHost(t)
	f.FailReadDir("/d", 2, syscall.EIO)

	entries, err := f.ReadDir("/d")
	if !errors.Is(err, syscall.EIO) {
		t.Fatalf("ReadDir() error = %v, want EIO", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ReadDir() returned %d entries, want 2", len(entries))
	}
	if entries[0].Name() != "a" || entries[1].Name() != "b" {
		t.Errorf("ReadDir() entries = %s, %s", entries[0].Name(), entries[1].Name())
	}

	f.FailReadDir("/", 10, syscall.EIO)
	entries, err = f.ReadDir("/")
	if err == nil || len(entries) != 1 {
		t.Errorf("ReadDir(/) = %d entries, %v; want 1 entry and an error", len(entries), err)
	}
}

func TestCalls(t *testing.T) {
	f := newHost(t)
	f.Fail("rename", "/d/a", syscall.EXDEV)

	if err := f.Rename("/d/a", "/d/z"); !errors.Is(err, syscall.EXDEV) {
		t.Fatalf("Rename() error = %v, want EXDEV", err)
	}
	if err := f.Symlink("a", "/d/link"); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}
	if target, err := f.Readlink("/d/link"); err != nil || target != "a" {
		t.Errorf("Readlink() = %q, %v", target, err)
	}

	want := []Call{
		{Op: "rename", Name: "/d/a"},
		{Op: "symlink", Name: "/d/link"},
		{Op: "readlink", Name: "/d/link"},
	}
	got := f.Calls()
	if len(got) != len(want) {
		t.Fatalf("Calls() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Calls()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
