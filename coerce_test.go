package fspath

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/fspath/billy"
	fserrors "github.com/jmgilman/go/fspath/errors"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestToPath_Equivalence(t *testing.T) {
	want := mustPath(t, Default(), "/a/b")

	inputs := map[string]func() (Path, error){
		"string":        func() (Path, error) { return ToPath("/a/b") },
		"trailing":      func() (Path, error) { return ToPath("/a//b/") },
		"segments":      func() (Path, error) { return ToPath([]string{"/a", "b"}) },
		"variadic":      func() (Path, error) { return ToPath("/a", "b") },
		"filesystem":    func() (Path, error) { return ToPath(Default(), "/a", "b") },
		"uri":           func() (Path, error) { return ToPath(mustURL(t, "file:///a/b")) },
		"uri value":     func() (Path, error) { return ToPath(*mustURL(t, "file:///a/b")) },
		"uri localhost": func() (Path, error) { return ToPath(mustURL(t, "file://localhost/a/b")) },
		"path":          func() (Path, error) { return ToPath(want) },
	}
	for name, build := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := build()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestToPath_File(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "handle.txt"))
	require.NoError(t, err)
	defer f.Close()

	got, err := ToPath(f)
	require.NoError(t, err)
	want, err := ToPath(f.Name())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestToPath_Rejects(t *testing.T) {
	_, err := ToPath(42)
	assertCode(t, err, fserrors.CodeUnsupportedInput)
	var coded fserrors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, "int", coded.Context()["type"])

	_, err = ToPath(nil)
	assertCode(t, err, fserrors.CodeUnsupportedInput)

	_, err = ToPath(mustPath(t, Default(), "/a"), "b")
	assertCode(t, err, fserrors.CodeUnsupportedInput)

	_, err = ToPath(3, "b")
	assertCode(t, err, fserrors.CodeUnsupportedInput)

	_, err = ToPath("/a", "b\x00")
	assertCode(t, err, fserrors.CodeInvalidInput)

	_, err = ToPath(Path{})
	assertCode(t, err, fserrors.CodeUnsupportedInput)

	_, err = ToPath((*os.File)(nil))
	assertCode(t, err, fserrors.CodeUnsupportedInput)
}

func TestFacade_ZeroPath(t *testing.T) {
	fsys := newMemory(t)
	root := mustPath(t, fsys, "/")

	name, err := FileName(root)
	require.NoError(t, err)
	require.True(t, name.IsZero())
	parent, err := Parent(root)
	require.NoError(t, err)
	require.True(t, parent.IsZero())

	_, err = Exists(name)
	assertCode(t, err, fserrors.CodeUnsupportedInput)
	_, err = ReadAllBytes(name)
	assertCode(t, err, fserrors.CodeUnsupportedInput)
	_, err = RealPath(parent)
	assertCode(t, err, fserrors.CodeUnsupportedInput)
	err = Delete(parent)
	assertCode(t, err, fserrors.CodeUnsupportedInput)
	_, err = Parent(parent)
	assertCode(t, err, fserrors.CodeUnsupportedInput)
	_, err = ToFileSystem(parent)
	assertCode(t, err, fserrors.CodeUnsupportedInput)
}

func TestToPath_URIErrors(t *testing.T) {
	tests := []struct {
		name string
		uri  *url.URL
		code fserrors.ErrorCode
	}{
		{"authority", mustURL(t, "file://server/a"), fserrors.CodeInvalidInput},
		{"query", mustURL(t, "file:///a?x=1"), fserrors.CodeInvalidInput},
		{"fragment", mustURL(t, "file:///a#top"), fserrors.CodeInvalidInput},
		{"relative", mustURL(t, "a/b"), fserrors.CodeInvalidInput},
		{"opaque", mustURL(t, "file:a/b"), fserrors.CodeInvalidInput},
		{"unknown scheme", mustURL(t, "nosuchscheme://x/a"), fserrors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToPath(tt.uri)
			assertCode(t, err, tt.code)
		})
	}
}

func TestMount(t *testing.T) {
	fsys := NewFileSystem(billy.NewMemory(), WithScheme("mounttest"), WithAuthority("one"))
	require.NoError(t, Mount(fsys))
	t.Cleanup(func() { Unmount(fsys) })

	p, err := ToPath(mustURL(t, "mounttest://one/data/x"))
	require.NoError(t, err)
	assert.Same(t, fsys, p.FileSystem())
	assert.Equal(t, "/data/x", p.String())
	assert.Equal(t, "mounttest://one/data/x", p.URI().String())

	got, err := ToFileSystem(mustURL(t, "mounttest://one/"))
	require.NoError(t, err)
	assert.Same(t, fsys, got)

	_, err = ToPath(mustURL(t, "mounttest://two/data"))
	assertCode(t, err, fserrors.CodeFileSystemNotFound)

	dup := NewFileSystem(billy.NewMemory(), WithScheme("mounttest"), WithAuthority("one"))
	assertCode(t, Mount(dup), fserrors.CodeAlreadyExists)

	require.NoError(t, fsys.Close())
	_, err = ToPath(mustURL(t, "mounttest://one/data"))
	assertCode(t, err, fserrors.CodeInvalidInput)
	assertCode(t, Mount(fsys), fserrors.CodeClosed)
}

func TestToFileSystem(t *testing.T) {
	def, err := ToFileSystem()
	require.NoError(t, err)
	assert.Same(t, Default(), def)

	fsys := newMemory(t)
	got, err := ToFileSystem(mustPath(t, fsys, "/work"))
	require.NoError(t, err)
	assert.Same(t, fsys, got)

	got, err = ToFileSystem(fsys)
	require.NoError(t, err)
	assert.Same(t, fsys, got)

	got, err = ToFileSystem(mustURL(t, "file:///"))
	require.NoError(t, err)
	assert.Same(t, Default(), got)

	_, err = ToFileSystem(fsys, fsys)
	assertCode(t, err, fserrors.CodeInvalidInput)

	_, err = ToFileSystem(Path{})
	assertCode(t, err, fserrors.CodeUnsupportedInput)

	_, err = ToFileSystem("not a file system")
	assertCode(t, err, fserrors.CodeUnsupportedInput)
}

type ticket struct {
	queue string
	id    string
}

type asset string

func (a asset) ToPath() (Path, error) {
	return ToPath("/assets/" + string(a))
}

type pinnedAsset string

func (a pinnedAsset) ToPath() (Path, error) {
	return ToPath("/unpinned/" + string(a))
}

func TestRegisterPathCoercer(t *testing.T) {
	RegisterPathCoercer(func(tk ticket) (Path, error) {
		return ToPath("/queues", tk.queue, tk.id)
	})
	RegisterPathCoercer(func(a pinnedAsset) (Path, error) {
		return ToPath("/pinned/" + string(a))
	})

	p, err := ToPath(ticket{queue: "ops", id: "42"})
	require.NoError(t, err)
	assert.Equal(t, "/queues/ops/42", p.String())

	// capability interface
	p, err = ToPath(asset("logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "/assets/logo.png", p.String())

	// exact registration wins over the capability interface
	p, err = ToPath(pinnedAsset("logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "/pinned/logo.png", p.String())

	// coerced values are accepted by every operation
	name, err := FileName(ticket{queue: "ops", id: "42"})
	require.NoError(t, err)
	assert.Equal(t, "42", name.String())
}

type tenant struct {
	fsys *FileSystem
}

func (t tenant) ToFileSystem() (*FileSystem, error) {
	return t.fsys, nil
}

func TestFileSystemCoercible(t *testing.T) {
	fsys := newMemory(t, WithReadOnly())

	ro, err := IsReadOnly(tenant{fsys: fsys})
	require.NoError(t, err)
	assert.True(t, ro)

	ro, err = IsReadOnly()
	require.NoError(t, err)
	assert.False(t, ro)
}

func TestToWatchEventKind(t *testing.T) {
	tests := []struct {
		in   any
		want WatchEventKind
	}{
		{"entry-create", EntryCreate},
		{"entry-delete", EntryDelete},
		{"entry-modify", EntryModify},
		{EntryModify, EntryModify},
		{Overflow, Overflow},
		{7, PassthroughKind{Value: 7}},
	}
	for _, tt := range tests {
		got, err := ToWatchEventKind(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ToWatchEventKind("entry-rename")
	assertCode(t, err, fserrors.CodeUnsupportedEventKind)
	var coded fserrors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, "entry-rename", coded.Context()["kind"])

	assert.Equal(t, "7", PassthroughKind{Value: 7}.Name())
}
