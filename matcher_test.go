package fspath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

func TestPathMatcher(t *testing.T) {
	fsys := newMemory(t)

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"glob:*.go", "main.go", true},
		{"glob:*.go", "cmd/main.go", false},
		{"glob:**/*.go", "/src/cmd/main.go", true},
		{"glob:/src/*/main.go", "/src/cmd/main.go", true},
		{"glob:*.{go,mod}", "go.mod", true},
		{"glob:file?.txt", "file1.txt", true},
		{"glob:file[0-9].txt", "filea.txt", false},
		{"GLOB:*.txt", "a.txt", true},
		{"regex:.*\\.go", "/src/main.go", true},
		{"regex:main", "/src/main.go", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			m, err := fsys.PathMatcher(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Matches(mustPath(t, fsys, tt.path)))
		})
	}
}

func TestPathMatcher_Errors(t *testing.T) {
	fsys := newMemory(t)

	_, err := fsys.PathMatcher("*.go")
	assertCode(t, err, fserrors.CodeInvalidInput)
	_, err = fsys.PathMatcher("glob:[a-")
	assertCode(t, err, fserrors.CodeInvalidInput)
	_, err = fsys.PathMatcher("regex:(")
	assertCode(t, err, fserrors.CodeInvalidInput)
	_, err = fsys.PathMatcher("xpath://a")
	assertCode(t, err, fserrors.CodeUnsupported)

	m, err := NewPathMatcher("glob:*.txt")
	require.NoError(t, err)
	assert.True(t, m.Matches(mustPath(t, Default(), "notes.txt")))
}

func TestListDirectory(t *testing.T) {
	fsys := newMemory(t)
	writeFiles(t, fsys, map[string]string{
		"/work/b.go":     "",
		"/work/a.go":     "",
		"/work/go.mod":   "",
		"/work/sub/c.go": "",
	})

	all, err := ListDirectory(mustPath(t, fsys, "/work"))
	require.NoError(t, err)
	var names []string
	for _, p := range all {
		names = append(names, p.String())
	}
	assert.Equal(t, []string{"/work/a.go", "/work/b.go", "/work/go.mod", "/work/sub"}, names)

	goFiles, err := ListDirectory(mustPath(t, fsys, "/work"), "*.go")
	require.NoError(t, err)
	assert.Equal(t, []Path{mustPath(t, fsys, "/work/a.go"), mustPath(t, fsys, "/work/b.go")}, goFiles)

	_, err = ListDirectory(mustPath(t, fsys, "/work"), "[")
	assertCode(t, err, fserrors.CodeInvalidInput)
	_, err = ListDirectory(mustPath(t, fsys, "/work/a.go"))
	assertCode(t, err, fserrors.CodeNotDirectory)
	_, err = ListDirectory(mustPath(t, fsys, "/work/missing"))
	assertCode(t, err, fserrors.CodeNotFound)
}
