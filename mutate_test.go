package fspath

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

func TestCreateDirectory(t *testing.T) {
	fsys := newMemory(t)

	dir, err := CreateDirectory(mustPath(t, fsys, "/work/a"))
	require.NoError(t, err)
	assert.Equal(t, "/work/a", dir.String())

	_, err = CreateDirectory(mustPath(t, fsys, "/work/a"))
	assertCode(t, err, fserrors.CodeAlreadyExists)

	_, err = CreateDirectory(mustPath(t, fsys, "/work/x/y"))
	assertCode(t, err, fserrors.CodeNotFound)

	_, err = CreateDirectory(mustPath(t, fsys, "/work/b"), FileAttribute{name: "acl:entries", value: "x"})
	assertCode(t, err, fserrors.CodeUnsupported)
}

func TestCreateDirectories(t *testing.T) {
	fsys := newMemory(t)

	_, err := CreateDirectories(mustPath(t, fsys, "/work/x/y/z"))
	require.NoError(t, err)
	ok, err := IsDirectory(mustPath(t, fsys, "/work/x/y/z"))
	require.NoError(t, err)
	assert.True(t, ok)

	// existing directories are fine
	_, err = CreateDirectories(mustPath(t, fsys, "/work/x/y"))
	require.NoError(t, err)

	writeFiles(t, fsys, map[string]string{"/work/file": "x"})
	_, err = CreateDirectories(mustPath(t, fsys, "/work/file"))
	assertCode(t, err, fserrors.CodeAlreadyExists)

	_, err = CreateDirectories(mustPath(t, fsys, "/work/file/below"))
	assertCode(t, err, fserrors.CodeNotDirectory)
}

func TestCreateFile(t *testing.T) {
	fsys := newMemory(t)

	p, err := CreateFile(mustPath(t, fsys, "/work/new.txt"))
	require.NoError(t, err)
	size, err := Size(p)
	require.NoError(t, err)
	assert.Zero(t, size)

	_, err = CreateFile(p)
	assertCode(t, err, fserrors.CodeAlreadyExists)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestCreate_LocalPermissions(t *testing.T) {
	old := syscall.Umask(0)
	t.Cleanup(func() { syscall.Umask(old) })
	dir := t.TempDir()

	file, err := CreateFile(filepath.Join(dir, "secret"), PosixPermissionsAttribute(0o600))
	require.NoError(t, err)
	perm, err := PosixPermissions(file)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o600), perm)

	sub, err := CreateDirectory(filepath.Join(dir, "private"), PosixPermissionsAttribute(0o700))
	require.NoError(t, err)
	perm, err = PosixPermissions(sub)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o700), perm)

	tmp, err := CreateTempFile(dir, "cfg-", "", PosixPermissionsAttribute(0o640))
	require.NoError(t, err)
	perm, err = PosixPermissions(tmp)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o640), perm)
}

func TestCreateSymbolicLink(t *testing.T) {
	fsys := newMemory(t)

	_, err := CreateSymbolicLink(mustPath(t, fsys, "/work/link"), "target")
	require.NoError(t, err)

	_, err = CreateSymbolicLink(mustPath(t, fsys, "/work/link"), "target")
	assertCode(t, err, fserrors.CodeAlreadyExists)

	_, err = CreateSymbolicLink(mustPath(t, fsys, "/work/other"), "target", PosixPermissionsAttribute(0o700))
	assertCode(t, err, fserrors.CodeUnsupported)
}

func TestCreateLink_Local(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original")
	require.NoError(t, os.WriteFile(original, []byte("x"), 0o644))

	link, err := CreateLink(filepath.Join(dir, "hard"), original)
	require.NoError(t, err)

	same, err := IsSameFile(link, original)
	require.NoError(t, err)
	assert.True(t, same)

	// the memory host has no hard links
	fsys := newMemory(t)
	_, err = CreateLink(mustPath(t, fsys, "/work/hard"), "/work")
	assertCode(t, err, fserrors.CodeUnsupported)
}

func TestCreateTemp(t *testing.T) {
	fsys := newMemory(t)
	work := mustPath(t, fsys, "/work")

	file, err := CreateTempFile(work, "report-", "")
	require.NoError(t, err)
	assert.Equal(t, work, file.Parent())
	assert.True(t, strings.HasPrefix(file.FileName().String(), "report-"))
	assert.True(t, strings.HasSuffix(file.FileName().String(), ".tmp"))

	csv, err := CreateTempFile(work, "report-", ".csv")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(csv.String(), ".csv"))
	assert.NotEqual(t, file, csv)

	dir, err := CreateTempDirectory(work, "stage-")
	require.NoError(t, err)
	ok, err := IsDirectory(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(dir.FileName().String(), "stage-"))

	local, err := CreateTempFile(nil, "fspath-", ".tmp")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(local.String()) })
	assert.Same(t, Default(), local.FileSystem())
	assert.True(t, local.IsAbsolute())
}

func TestDelete(t *testing.T) {
	fsys := newMemory(t)
	writeFiles(t, fsys, map[string]string{"/work/full/child": "x", "/work/file": "y"})

	require.NoError(t, Delete(mustPath(t, fsys, "/work/file")))
	gone, err := NotExists(mustPath(t, fsys, "/work/file"))
	require.NoError(t, err)
	assert.True(t, gone)

	err = Delete(mustPath(t, fsys, "/work/file"))
	assertCode(t, err, fserrors.CodeNotFound)

	err = Delete(mustPath(t, fsys, "/work/full"))
	assertCode(t, err, fserrors.CodeDirectoryNotEmpty)

	existed, err := DeleteIfExists(mustPath(t, fsys, "/work/full/child"))
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = DeleteIfExists(mustPath(t, fsys, "/work/full/child"))
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestDelete_HostBusy(t *testing.T) {
	fsys, faulty := newFaulty(t)
	writeFiles(t, fsys, map[string]string{"/work/locked": "x"})
	faulty.Fail("remove", "/work/locked", syscall.EBUSY)

	err := Delete(mustPath(t, fsys, "/work/locked"))
	assertCode(t, err, fserrors.CodeBusy)
	assert.True(t, fserrors.IsRetryable(err))
	assert.ErrorIs(t, err, syscall.EBUSY)
}

func TestReadOnlyFileSystem(t *testing.T) {
	fsys := newMemory(t, WithReadOnly())
	p := mustPath(t, fsys, "/work/x")

	_, err := CreateFile(p)
	assertCode(t, err, fserrors.CodeReadOnly)
	_, err = Write(p, []byte("x"))
	assertCode(t, err, fserrors.CodeReadOnly)
	assertCode(t, Delete(mustPath(t, fsys, "/work")), fserrors.CodeReadOnly)

	// reads still work
	ok, err := IsDirectory(mustPath(t, fsys, "/work"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMove(t *testing.T) {
	fsys := newMemory(t)
	writeFiles(t, fsys, map[string]string{"/work/a.txt": "a", "/work/b.txt": "b"})

	dst, err := Move(mustPath(t, fsys, "/work/a.txt"), "/work/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "/work/c.txt", dst.String())
	data, err := ReadAllBytes(dst)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	_, err = Move(dst, "/work/b.txt")
	assertCode(t, err, fserrors.CodeAlreadyExists)

	_, err = Move(dst, "/work/b.txt", ReplaceExisting)
	require.NoError(t, err)
	data, err = ReadAllBytes(mustPath(t, fsys, "/work/b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	_, err = Move(mustPath(t, fsys, "/work/missing"), "/work/z")
	assertCode(t, err, fserrors.CodeNotFound)
}

func TestMove_CrossDeviceFallback(t *testing.T) {
	fsys, faulty := newFaulty(t)
	writeFiles(t, fsys, map[string]string{"/work/src.txt": "payload"})
	faulty.Fail("rename", "/work/src.txt", syscall.EXDEV)

	_, err := Move(mustPath(t, fsys, "/work/src.txt"), "/work/dst.txt", AtomicMove)
	assertCode(t, err, fserrors.CodeCrossDevice)

	dst, err := Move(mustPath(t, fsys, "/work/src.txt"), "/work/dst.txt")
	require.NoError(t, err)
	data, err := ReadAllBytes(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	gone, err := NotExists(mustPath(t, fsys, "/work/src.txt"))
	require.NoError(t, err)
	assert.True(t, gone)
}

func TestMove_AcrossFileSystems(t *testing.T) {
	src := newMemory(t)
	dst := newMemory(t)
	writeFiles(t, src, map[string]string{"/work/doc.txt": "doc", "/work/full/child": "x"})
	_, err := CreateDirectory(mustPath(t, src, "/work/empty"))
	require.NoError(t, err)

	moved, err := Move(mustPath(t, src, "/work/doc.txt"), mustPath(t, dst, "/work/doc.txt"))
	require.NoError(t, err)
	assert.Same(t, dst, moved.FileSystem())
	data, err := ReadAllBytes(moved)
	require.NoError(t, err)
	assert.Equal(t, "doc", string(data))

	_, err = Move(mustPath(t, src, "/work/empty"), mustPath(t, dst, "/work/empty"))
	require.NoError(t, err)
	ok, err := IsDirectory(mustPath(t, dst, "/work/empty"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Move(mustPath(t, src, "/work/full"), mustPath(t, dst, "/work/full"))
	assertCode(t, err, fserrors.CodeDirectoryNotEmpty)

	_, err = Move(mustPath(t, src, "/work/full"), mustPath(t, dst, "/work/full"), AtomicMove)
	assertCode(t, err, fserrors.CodeCrossDevice)
}

func TestSetters_Local(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err := SetLastModifiedTime(file, when)
	require.NoError(t, err)
	mtime, err := LastModifiedTime(file)
	require.NoError(t, err)
	assert.True(t, when.Equal(mtime), "mtime = %v", mtime)

	_, err = SetPosixPermissions(file, 0o600)
	require.NoError(t, err)
	perm, err := PosixPermissions(file)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o600), perm)

	_, err = SetAttribute(file, "posix:permissions", fs.FileMode(0o640))
	require.NoError(t, err)
	perm, err = PosixPermissions(file)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o640), perm)

	_, err = SetAttribute(file, "basic:lastModifiedTime", when.Add(time.Hour))
	require.NoError(t, err)
	mtime, err = LastModifiedTime(file)
	require.NoError(t, err)
	assert.True(t, when.Add(time.Hour).Equal(mtime))

	_, err = SetAttribute(file, "posix:permissions", "rw-------")
	assertCode(t, err, fserrors.CodeInvalidInput)

	_, err = SetAttribute(file, "basic:size", int64(4))
	assertCode(t, err, fserrors.CodeUnsupported)
}

func TestSetters_MemoryUnsupported(t *testing.T) {
	fsys := newMemory(t)
	p := mustPath(t, fsys, "/work")

	_, err := SetPosixPermissions(p, 0o700)
	assertCode(t, err, fserrors.CodeUnsupported)
	_, err = SetAttribute(p, "user:tag", "x")
	assertCode(t, err, fserrors.CodeUnsupported)
}
