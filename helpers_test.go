package fspath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/fspath/billy"
	fserrors "github.com/jmgilman/go/fspath/errors"
	"github.com/jmgilman/go/fspath/internal/faultfs"
)

// newMemory returns an unmounted FileSystem over a fresh memory host with a
// "/work" directory.
func newMemory(t *testing.T, opts ...Option) *FileSystem {
	t.Helper()
	host := billy.NewMemory()
	require.NoError(t, host.MkdirAll("/work", 0o755))
	return NewFileSystem(host, opts...)
}

// newFaulty returns a FileSystem whose memory host injects the faults
// registered on the returned wrapper.
func newFaulty(t *testing.T) (*FileSystem, *faultfs.FS) {
	t.Helper()
	host := billy.NewMemory()
	require.NoError(t, host.MkdirAll("/work", 0o755))
	faulty := faultfs.New(host)
	return NewFileSystem(faulty), faulty
}

func mustPath(t *testing.T, fsys *FileSystem, first string, more ...string) Path {
	t.Helper()
	p, err := fsys.Path(first, more...)
	require.NoError(t, err)
	return p
}

// writeFiles creates each named file with its content, creating parents.
func writeFiles(t *testing.T, fsys *FileSystem, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := mustPath(t, fsys, name)
		_, err := CreateDirectories(p.Parent())
		require.NoError(t, err)
		_, err = Write(p, []byte(content))
		require.NoError(t, err)
	}
}

func assertCode(t *testing.T, err error, code fserrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, fserrors.GetCode(err), "error: %v", err)
}
