package fspath

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

func TestCopy_ReaderToPath(t *testing.T) {
	fsys := newMemory(t)
	dst := mustPath(t, fsys, "/work/upload.bin")

	res, err := Copy(strings.NewReader("payload"), dst)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Bytes)
	assert.Equal(t, dst, res.Target)

	data, err := ReadAllBytes(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = Copy(strings.NewReader("again"), dst)
	assertCode(t, err, fserrors.CodeAlreadyExists)

	_, err = Copy(strings.NewReader("again"), dst, ReplaceExisting)
	require.NoError(t, err)
	data, err = ReadAllBytes(dst)
	require.NoError(t, err)
	assert.Equal(t, "again", string(data))

	_, err = Copy(strings.NewReader("x"), dst, ReplaceExisting, CopyAttributes)
	assertCode(t, err, fserrors.CodeUnsupportedInput)
}

func TestCopy_PathToWriter(t *testing.T) {
	fsys := newMemory(t)
	writeFiles(t, fsys, map[string]string{"/work/report.txt": "quarterly"})

	var buf bytes.Buffer
	res, err := Copy(mustPath(t, fsys, "/work/report.txt"), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.Bytes)
	assert.Equal(t, Path{}, res.Target)
	assert.Equal(t, "quarterly", buf.String())

	_, err = Copy(mustPath(t, fsys, "/work/report.txt"), &buf, ReplaceExisting)
	assertCode(t, err, fserrors.CodeUnsupportedInput)

	_, err = Copy(mustPath(t, fsys, "/work/missing"), &buf)
	assertCode(t, err, fserrors.CodeNotFound)
}

func TestCopy_PathToPath(t *testing.T) {
	fsys := newMemory(t)
	writeFiles(t, fsys, map[string]string{
		"/work/src/a.txt":   "alpha",
		"/work/existing":    "old",
		"/work/src/sub/b.c": "beta",
	})
	src := mustPath(t, fsys, "/work/src/a.txt")

	res, err := Copy(src, "/work/copy.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Bytes)
	data, err := ReadAllBytes(res.Target)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	_, err = Copy(src, "/work/existing")
	assertCode(t, err, fserrors.CodeAlreadyExists)

	_, err = Copy(src, "/work/existing", ReplaceExisting)
	require.NoError(t, err)

	_, err = Copy(src, "/work/atomic", AtomicMove)
	assertCode(t, err, fserrors.CodeUnsupportedInput)

	// copying onto itself is a no-op
	res, err = Copy(src, src)
	require.NoError(t, err)
	assert.Zero(t, res.Bytes)

	// directories are copied without their entries
	res, err = Copy(mustPath(t, fsys, "/work/src"), "/work/dir-copy")
	require.NoError(t, err)
	isDir, err := IsDirectory(res.Target)
	require.NoError(t, err)
	assert.True(t, isDir)
	entries, err := fsys.Provider().ReadDir("/work/dir-copy")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCopy_SymbolicLink(t *testing.T) {
	fsys := newMemory(t)
	writeFiles(t, fsys, map[string]string{"/work/target.txt": "data"})
	link := mustPath(t, fsys, "/work/link")
	_, err := CreateSymbolicLink(link, "target.txt")
	require.NoError(t, err)

	res, err := Copy(link, "/work/link-copy", NoFollowLinks)
	require.NoError(t, err)
	isLink, err := IsSymbolicLink(res.Target)
	require.NoError(t, err)
	assert.True(t, isLink)
	target, err := ReadSymbolicLink(res.Target)
	require.NoError(t, err)
	assert.Equal(t, "target.txt", target.String())

	res, err = Copy(link, "/work/followed")
	require.NoError(t, err)
	isLink, err = IsSymbolicLink(res.Target)
	require.NoError(t, err)
	assert.False(t, isLink)
	assert.Equal(t, int64(4), res.Bytes)
}

func TestCopy_AcrossFileSystems(t *testing.T) {
	from := newMemory(t)
	to := newMemory(t)
	writeFiles(t, from, map[string]string{"/work/a.txt": "shared"})

	res, err := Copy(mustPath(t, from, "/work/a.txt"), mustPath(t, to, "/work/b.txt"))
	require.NoError(t, err)
	assert.Same(t, to, res.Target.FileSystem())

	data, err := ReadAllBytes(res.Target)
	require.NoError(t, err)
	assert.Equal(t, "shared", string(data))

	readOnly := newMemory(t, WithReadOnly())
	_, err = Copy(mustPath(t, from, "/work/a.txt"), mustPath(t, readOnly, "/work/b.txt"))
	assertCode(t, err, fserrors.CodeReadOnly)
}

func TestCopy_CoercedSource(t *testing.T) {
	dir := t.TempDir()
	src := dir + "/in.txt"
	_, err := Write(src, []byte("local"))
	require.NoError(t, err)

	var buf bytes.Buffer
	res, err := Copy(src, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Bytes)
	assert.Equal(t, "local", buf.String())

	_, err = Copy(42, &buf)
	assertCode(t, err, fserrors.CodeUnsupportedInput)

	_, err = Copy(mustPath(t, Default(), src), 42)
	assertCode(t, err, fserrors.CodeUnsupportedInput)
}

type greeting string

// collectRoute copies greetings into a string slice.
type collectRoute struct{}

func (collectRoute) Accepts(source, target any) bool {
	_, ok := source.(greeting)
	_, sink := target.(*[]string)
	return ok && sink
}

func (collectRoute) Copy(source, target any, _ ...CopyOption) (CopyResult, error) {
	g := source.(greeting)
	sink := target.(*[]string)
	*sink = append(*sink, string(g))
	return CopyResult{Bytes: int64(len(g))}, nil
}

func TestRegisterCopyRoute(t *testing.T) {
	RegisterCopyRoute(collectRoute{})

	var got []string
	res, err := Copy(greeting("hello"), &got)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Bytes)
	assert.Equal(t, []string{"hello"}, got)
}
