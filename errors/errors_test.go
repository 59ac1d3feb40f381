package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "file not found")

	require.NotNil(t, err)
	assert.Equal(t, CodeNotFound, err.Code())
	assert.Equal(t, "file not found", err.Message())
	assert.Equal(t, ClassificationPermanent, err.Classification())
	assert.Nil(t, err.Context())
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "[NOT_FOUND] file not found", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeUnsupportedEventKind, "unsupported event kind %q", "entry-rename")
	assert.Equal(t, `unsupported event kind "entry-rename"`, err.Message())
}

func TestClassification(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{CodeBusy, true},
		{CodeInterrupted, true},
		{CodeNotFound, false},
		{CodeUnsupportedInput, false},
		{CodeIO, false},
		{ErrorCode("SOMETHING_ELSE"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retryable, New(tt.code, "x").Classification().IsRetryable())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "/missing", Err: fs.ErrNotExist}
	err := Wrap(cause, CodeNotFound, "read /missing")

	require.NotNil(t, err)
	assert.Equal(t, CodeNotFound, err.Code())
	assert.Same(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	assert.Equal(t, "[NOT_FOUND] read /missing: open /missing: file does not exist", err.Error())
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeNotFound, "test"))
	assert.Nil(t, Wrapf(nil, CodeNotFound, "test %s", "arg"))
	assert.Nil(t, WrapWithContext(nil, CodeNotFound, "test", map[string]any{"a": 1}))
}

func TestWrap_PreservesClassification(t *testing.T) {
	original := New(CodeBusy, "device busy")
	wrapped := Wrap(original, CodeIO, "write failed")

	assert.Equal(t, CodeIO, wrapped.Code())
	assert.True(t, wrapped.Classification().IsRetryable())
}

func TestWrapWithContext_CopiesContext(t *testing.T) {
	ctx := map[string]any{"path": "/a"}
	err := WrapWithContext(stderrors.New("boom"), CodeIO, "write", ctx)

	ctx["path"] = "/b"
	assert.Equal(t, "/a", err.Context()["path"])

	got := err.Context()
	got["path"] = "/c"
	assert.Equal(t, "/a", err.Context()["path"])
}

func TestWithContext(t *testing.T) {
	err := New(CodeNotFound, "missing")
	err = WithContext(err, "path", "/a")
	err = WithContext(err, "op", "delete")

	assert.Equal(t, map[string]any{"path": "/a", "op": "delete"}, err.Context())
	assert.Equal(t, CodeNotFound, err.Code())
}

func TestWithContext_StandardError(t *testing.T) {
	cause := stderrors.New("plain")
	err := WithContext(cause, "input", 42)

	assert.Equal(t, CodeUnknown, err.Code())
	assert.Equal(t, "plain", err.Message())
	assert.Same(t, cause, err.Unwrap())
	assert.Equal(t, 42, err.Context()["input"])
}

func TestWithContextMap_Overrides(t *testing.T) {
	err := WrapWithContext(stderrors.New("x"), CodeIO, "io", map[string]any{"path": "/a", "op": "read"})
	err = WithContextMap(err, map[string]any{"path": "/b"})

	assert.Equal(t, map[string]any{"path": "/b", "op": "read"}, err.Context())
}

func TestWithContext_Nil(t *testing.T) {
	assert.Nil(t, WithContext(nil, "k", "v"))
	assert.Nil(t, WithContextMap(nil, map[string]any{"k": "v"}))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, CodeUnknown},
		{"standard", stderrors.New("x"), CodeUnknown},
		{"coded", New(CodeLoop, "loop"), CodeLoop},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(CodeClosed, "closed")), CodeClosed},
		{"outermost wins", Wrap(New(CodeNotFound, "inner"), CodeIO, "outer"), CodeIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(New(CodeReadOnly, "ro"), CodeReadOnly))
	assert.False(t, HasCode(New(CodeReadOnly, "ro"), CodeForbidden))
	assert.False(t, HasCode(nil, CodeUnknown))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(stderrors.New("x")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", New(CodeInterrupted, "eintr"))))
	assert.Equal(t, ClassificationPermanent, GetClassification(nil))
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotDirectory, "not a dir"))

	var coded Error
	require.True(t, As(err, &coded))
	assert.Equal(t, CodeNotDirectory, coded.Code())
	assert.True(t, Is(err, coded))
}
