package billy

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/jmgilman/go/fspath/core"
)

func newWorkspace(t *testing.T) *MemoryFS {
	t.Helper()
	m := NewMemory()
	if err := m.MkdirAll("/work", 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	return m
}

// TestMemoryFS_RenameSiblingPrefix verifies that renaming "/work/a" leaves
// "/work/a.txt" and "/work/ab" alone.
func TestMemoryFS_RenameSiblingPrefix(t *testing.T) {
	m := newWorkspace(t)
	for _, name := range []string{"/work/a/child", "/work/ab"} {
		if err := m.MkdirAll(name, 0o755); err != nil {
			t.Fatalf("MkdirAll(%q) error = %v", name, err)
		}
	}
	if err := m.WriteFile("/work/a.txt", []byte("sibling"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := m.Rename("/work/a", "/work/z"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	for _, name := range []string{"/work/a.txt", "/work/ab", "/work/z/child"} {
		if ok, _ := m.Exists(name); !ok {
			t.Errorf("Exists(%q) = false after rename, want true", name)
		}
	}
	if ok, _ := m.Exists("/work/a"); ok {
		t.Error("Exists(/work/a) = true after rename, want false")
	}
}

func TestMemoryFS_RenameIntoSelf(t *testing.T) {
	m := newWorkspace(t)
	if err := m.MkdirAll("/work/d", 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	err := m.Rename("/work/d", "/work/d/inner")
	if !errors.Is(err, syscall.EINVAL) {
		t.Errorf("Rename() error = %v, want EINVAL", err)
	}
}

func TestMemoryFS_RenameReplaceRules(t *testing.T) {
	m := newWorkspace(t)
	_ = m.WriteFile("/work/f", nil, 0o644)
	_ = m.Mkdir("/work/d", 0o755)
	_ = m.Mkdir("/work/empty", 0o755)

	if err := m.Rename("/work/f", "/work/d"); !errors.Is(err, syscall.EISDIR) {
		t.Errorf("Rename(file, dir) error = %v, want EISDIR", err)
	}
	if err := m.Rename("/work/d", "/work/f"); !errors.Is(err, syscall.ENOTDIR) {
		t.Errorf("Rename(dir, file) error = %v, want ENOTDIR", err)
	}
	if err := m.Rename("/work/d", "/work/empty"); err != nil {
		t.Errorf("Rename(dir, empty dir) error = %v, want nil", err)
	}
}

func TestMemoryFS_RenameKeepsLinks(t *testing.T) {
	m := newWorkspace(t)
	_ = m.Mkdir("/work/src", 0o755)
	_ = m.WriteFile("/work/target", []byte("t"), 0o644)
	if err := m.Symlink("../target", "/work/src/link"); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}
	if err := m.Rename("/work/src", "/work/dst"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	got, err := m.Readlink("/work/dst/link")
	if err != nil {
		t.Fatalf("Readlink() error = %v", err)
	}
	if got != "../target" {
		t.Errorf("Readlink() = %q, want ../target", got)
	}
	data, err := m.ReadFile("/work/dst/link")
	if err != nil || string(data) != "t" {
		t.Errorf("ReadFile(link) = %q, %v, want t", data, err)
	}
}

func TestMemoryFS_RelativeLinkInMiddle(t *testing.T) {
	m := newWorkspace(t)
	_ = m.MkdirAll("/work/deep/er", 0o755)
	_ = m.WriteFile("/work/deep/er/file", []byte("x"), 0o644)
	if err := m.Symlink("deep/er", "/work/jump"); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}
	data, err := m.ReadFile("/work/jump/file")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "x" {
		t.Errorf("ReadFile() = %q, want x", data)
	}
	if _, err := m.ReadDir("/work/jump/file/more"); !errors.Is(err, syscall.ENOTDIR) {
		t.Errorf("ReadDir() error = %v, want ENOTDIR", err)
	}
}

func TestMemoryFS_SelfLoop(t *testing.T) {
	m := newWorkspace(t)
	if err := m.Symlink("self", "/work/self"); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}
	if _, err := m.Stat("/work/self"); !errors.Is(err, syscall.ELOOP) {
		t.Errorf("Stat() error = %v, want ELOOP", err)
	}
	if _, err := m.Lstat("/work/self"); err != nil {
		t.Errorf("Lstat() error = %v, want nil", err)
	}
	if ok, err := m.Exists("/work/self"); !ok || err != nil {
		t.Errorf("Exists() = %v, %v, want true, nil", ok, err)
	}
}

func TestMemoryFS_CreateThroughDanglingLink(t *testing.T) {
	m := newWorkspace(t)
	if err := m.Symlink("made", "/work/link"); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}
	if err := m.WriteFile("/work/link", []byte("via"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := m.ReadFile("/work/made")
	if err != nil || string(data) != "via" {
		t.Errorf("ReadFile(/work/made) = %q, %v, want via", data, err)
	}
}

func TestMemoryFS_ExclusiveOnDanglingLink(t *testing.T) {
	m := newWorkspace(t)
	_ = m.Symlink("nothing", "/work/link")
	_, err := m.OpenFile("/work/link", os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if !errors.Is(err, fs.ErrExist) {
		t.Errorf("OpenFile(O_EXCL) error = %v, want fs.ErrExist", err)
	}
}

func TestMemoryFS_StatNameUsesRequestedName(t *testing.T) {
	m := newWorkspace(t)
	_ = m.WriteFile("/work/real", nil, 0o644)
	_ = m.Symlink("real", "/work/alias")
	info, err := m.Stat("/work/alias")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Name() != "alias" {
		t.Errorf("Stat().Name() = %q, want alias", info.Name())
	}
}

func TestMemoryFS_Stores(t *testing.T) {
	m := newWorkspace(t)
	stores, err := m.Stores()
	if err != nil {
		t.Fatalf("Stores() error = %v", err)
	}
	if len(stores) != 1 || stores[0].Mount != "/" {
		t.Errorf("Stores() = %+v, want one store mounted at /", stores)
	}
	if _, err := m.StoreOf("/work/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("StoreOf(missing) error = %v, want fs.ErrNotExist", err)
	}
	store, err := m.StoreOf("/work")
	if err != nil || store.Name != "memory" {
		t.Errorf("StoreOf(/work) = %+v, %v", store, err)
	}
}

func TestMemoryFS_TempDefaults(t *testing.T) {
	m := NewMemory(WithTempDir("/scratch"))
	dir, err := m.TempDir("", "x")
	if err != nil {
		t.Fatalf("TempDir() error = %v", err)
	}
	if dir[:len("/scratch/x")] != "/scratch/x" {
		t.Errorf("TempDir() = %q, want under /scratch", dir)
	}
}

func TestMemoryFS_WatchEvents(t *testing.T) {
	m := newWorkspace(t)
	w, err := m.Watch()
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer func() { _ = w.Close() }()
	_ = w.Add("/work")

	_ = m.WriteFile("/work/f", []byte("a"), 0o644)
	_ = m.Rename("/work/f", "/work/g")
	_ = m.MkdirAll("/elsewhere", 0o755)
	_ = m.Remove("/work/g")

	want := []core.Event{
		{Name: "/work/f", Op: core.OpCreate},
		{Name: "/work/f", Op: core.OpWrite},
		{Name: "/work/f", Op: core.OpRename},
		{Name: "/work/g", Op: core.OpCreate},
		{Name: "/work/g", Op: core.OpRemove},
	}
	for i, ev := range want {
		got := <-w.Events()
		if got != ev {
			t.Errorf("event %d = %+v, want %+v", i, got, ev)
		}
	}
	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}

func TestMemoryFS_WatchOverflow(t *testing.T) {
	m := NewMemory(WithEventBuffer(1))
	w, _ := m.Watch()
	defer func() { _ = w.Close() }()
	_ = w.Add("/")

	_ = m.Mkdir("/a", 0o755)
	_ = m.Mkdir("/b", 0o755)

	if err := <-w.Errors(); !errors.Is(err, core.ErrEventOverflow) {
		t.Errorf("Errors() = %v, want ErrEventOverflow", err)
	}
}

func TestMemoryFS_WatchRemoveUnknown(t *testing.T) {
	m := NewMemory()
	w, _ := m.Watch()
	if err := w.Remove("/nope"); err == nil {
		t.Error("Remove() error = nil, want error")
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events() still open after Close")
	}
}
