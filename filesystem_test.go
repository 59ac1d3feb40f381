package fspath

import (
	"bytes"
	"log/slog"
	"os/user"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/fspath/billy"
	fserrors "github.com/jmgilman/go/fspath/errors"
)

func TestNewFileSystem(t *testing.T) {
	fsys := NewFileSystem(billy.NewMemory(), WithWorkingDirectory("srv/app"))

	assert.Equal(t, "mem", fsys.Scheme())
	assert.Empty(t, fsys.Authority())
	assert.Equal(t, "/srv/app", fsys.WorkingDirectory().String())
	assert.Equal(t, "mem://", fsys.String())
	assert.True(t, fsys.IsOpen())
	assert.False(t, fsys.IsReadOnly())

	local := NewFileSystem(billy.NewLocal(), WithScheme("FILE"), WithAuthority("host"))
	assert.Equal(t, "file", local.Scheme())
	assert.Equal(t, "file://host", local.String())
	assert.Equal(t, "/", local.WorkingDirectory().String())

	assert.Same(t, Default(), Default())
	assert.Equal(t, "file", Default().Scheme())
}

func TestFileSystem_Structure(t *testing.T) {
	fsys := newMemory(t)

	sep, err := Separator(fsys)
	require.NoError(t, err)
	assert.Equal(t, "/", sep)

	roots, err := RootDirectories(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Path{mustPath(t, fsys, "/")}, roots)

	host, err := Provider(fsys)
	require.NoError(t, err)
	assert.Equal(t, fsys.Provider(), host)

	open, err := IsOpen(fsys)
	require.NoError(t, err)
	assert.True(t, open)

	_, err = fsys.Path("/a", "b\x00c")
	assertCode(t, err, fserrors.CodeInvalidInput)
}

func TestSupportedAttributeViews(t *testing.T) {
	views, err := SupportedAttributeViews(newMemory(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"basic"}, views)

	if runtime.GOOS != "linux" {
		t.Skip("ownership and extended attributes are linux only")
	}
	views, err = SupportedAttributeViews()
	require.NoError(t, err)
	assert.Equal(t, []string{"basic", "owner", "posix", "user"}, views)
}

func TestUserPrincipalLookupService(t *testing.T) {
	current, err := user.Current()
	require.NoError(t, err)

	svc, err := LookupService()
	require.NoError(t, err)

	byName, err := svc.LookupPrincipalByName(current.Username)
	require.NoError(t, err)
	assert.Equal(t, UserPrincipal{Name: current.Username, ID: current.Uid}, byName)
	assert.Equal(t, current.Username, byName.String())

	byID, err := svc.LookupPrincipalByName(current.Uid)
	require.NoError(t, err)
	assert.Equal(t, byName, byID)

	group, err := svc.LookupPrincipalByGroupName(current.Gid)
	require.NoError(t, err)
	assert.Equal(t, current.Gid, group.ID)

	_, err = svc.LookupPrincipalByName("no-such-user-for-fspath")
	assertCode(t, err, fserrors.CodeNotFound)
	_, err = svc.LookupPrincipalByGroupName("no-such-group-for-fspath")
	assertCode(t, err, fserrors.CodeNotFound)

	closed := newMemory(t)
	require.NoError(t, closed.Close())
	_, err = closed.UserPrincipalLookupService().LookupPrincipalByName(current.Username)
	assertCode(t, err, fserrors.CodeClosed)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	fsys := newMemory(t, WithLogger(logger))

	_, err := WalkFileTree(mustPath(t, fsys, "/work"), NaiveVisitor{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "walk started")
	assert.Contains(t, buf.String(), "walk finished")
}
