package s3

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/fspath/core"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		errMsg string
	}{
		{
			name: "valid config with credentials",
			config: Config{
				Endpoint:  "localhost:9000",
				Bucket:    "test-bucket",
				AccessKey: "minioadmin",
				SecretKey: "minioadmin",
			},
		},
		{
			name:   "valid config with client",
			config: Config{Client: &minio.Client{}, Bucket: "test-bucket"},
		},
		{
			name:   "missing bucket",
			config: Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"},
			errMsg: "bucket is required",
		},
		{
			name:   "missing endpoint without client",
			config: Config{Bucket: "b", AccessKey: "a", SecretKey: "s"},
			errMsg: "endpoint is required when client is not provided",
		},
		{
			name:   "missing access key without client",
			config: Config{Endpoint: "localhost:9000", Bucket: "b", SecretKey: "s"},
			errMsg: "access key is required when client is not provided",
		},
		{
			name:   "missing secret key without client",
			config: Config{Endpoint: "localhost:9000", Bucket: "b", AccessKey: "a"},
			errMsg: "secret key is required when client is not provided",
		},
		{
			name:   "negative threshold",
			config: Config{Client: &minio.Client{}, Bucket: "b", MultipartThreshold: -1},
			errMsg: "multipart threshold must not be negative",
		},
		{
			name:   "negative concurrency",
			config: Config{Client: &minio.Client{}, Bucket: "b", MaxRenameConcurrency: -1},
			errMsg: "rename concurrency must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.errMsg)
		})
	}
}

func TestNew(t *testing.T) {
	o, err := New(Config{Endpoint: "localhost:9000", Bucket: "assets", AccessKey: "a", SecretKey: "s"})
	require.NoError(t, err)
	assert.NotNil(t, o.Client())
	assert.Equal(t, "assets", o.Bucket())
	assert.Equal(t, core.FSTypeObject, o.Type())
	assert.Equal(t, int64(defaultMultipartThreshold), o.multipartThreshold)
	assert.Equal(t, defaultRenameConcurrency, o.renameConcurrency)

	o, err = New(Config{Client: &minio.Client{}, Bucket: "b", MultipartThreshold: 1024, MaxRenameConcurrency: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1024), o.multipartThreshold)
	assert.Equal(t, 3, o.renameConcurrency)

	_, err = New(Config{})
	assert.ErrorContains(t, err, "invalid config")
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix  string
		name    string
		key     string
		dirPref string
	}{
		{"", "/", "", ""},
		{"", "/a.txt", "a.txt", "a.txt/"},
		{"", "/docs/../b/c", "b/c", "b/c/"},
		{"/tenant/", "/", "tenant", "tenant/"},
		{"tenant", "/docs/a.txt", "tenant/docs/a.txt", "tenant/docs/a.txt/"},
		{"a//b", "x", "a/b/x", "a/b/x/"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix+tt.name, func(t *testing.T) {
			o, err := New(Config{Client: &minio.Client{}, Bucket: "b", Prefix: tt.prefix})
			require.NoError(t, err)
			assert.Equal(t, tt.key, o.objectKey(tt.name))
			assert.Equal(t, tt.dirPref, o.dirPrefix(tt.name))
		})
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"NoSuchKey", fs.ErrNotExist},
		{"NoSuchBucket", fs.ErrNotExist},
		{"AccessDenied", fs.ErrPermission},
		{"SlowDown", syscall.EBUSY},
		{"InvalidBucketName", syscall.EINVAL},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := translate(minio.ErrorResponse{Code: tt.code})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.NoError(t, translate(nil))
	other := errors.New("connection reset")
	err := translate(other)
	assert.ErrorIs(t, err, other)
	assert.Contains(t, err.Error(), "s3:")
}

func TestPathError(t *testing.T) {
	assert.NoError(t, pathError("stat", "/a", nil))

	err := pathError("stat", "/a", fs.ErrNotExist)
	var pe *fs.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "stat", pe.Op)
	assert.Equal(t, "/a", pe.Path)

	// existing path errors keep their op
	assert.Same(t, err, pathError("open", "/b", err))
}

func TestOpenFile_ReadWriteUnsupported(t *testing.T) {
	o, err := New(Config{Client: &minio.Client{}, Bucket: "b"})
	require.NoError(t, err)

	_, err = o.OpenFile("/a", os.O_RDWR, 0)
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestWriter(t *testing.T) {
	o, err := New(Config{Client: &minio.Client{}, Bucket: "b"})
	require.NoError(t, err)

	w := newWriter(o, "/docs/a.txt")
	assert.Equal(t, "/docs/a.txt", w.Name())
	assert.Equal(t, "docs/a.txt", w.key)

	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	info, err := w.Stat()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Name())
	assert.Equal(t, int64(5), info.Size())

	_, err = w.Read(make([]byte, 1))
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestWriter_WriteAt(t *testing.T) {
	tests := []struct {
		name string
		buf  string
		off  int
		data string
		want string
	}{
		{"overwrite prefix", "abc", 0, "X", "Xbc"},
		{"overwrite and extend", "abc", 2, "XYZ", "abXYZ"},
		{"append", "abc", 3, "d", "abcd"},
		{"empty", "", 0, "new", "new"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &writer{buf: []byte(tt.buf), off: tt.off}
			w.writeAt([]byte(tt.data))
			assert.Equal(t, tt.want, string(w.buf))
			assert.Equal(t, tt.off+len(tt.data), w.off)
		})
	}
}

func TestInfo(t *testing.T) {
	dir := newDirInfo("docs")
	assert.True(t, dir.IsDir())
	assert.Equal(t, fs.ModeDir|0o755, dir.Mode())
	assert.Nil(t, dir.Sys())

	entry := dirEntry{info: newFileInfo("a.txt", 3, dir.ModTime())}
	assert.False(t, entry.IsDir())
	assert.Equal(t, fs.FileMode(0), entry.Type())
	info, err := entry.Info()
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
	assert.True(t, info.Mode().IsRegular())
}

func TestStores(t *testing.T) {
	o, err := New(Config{Client: &minio.Client{}, Bucket: "assets"})
	require.NoError(t, err)

	stores, err := o.Stores()
	require.NoError(t, err)
	assert.Equal(t, []core.Store{{Name: "assets", Type: "s3", Mount: "/"}}, stores)
}
