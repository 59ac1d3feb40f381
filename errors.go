package fspath

import (
	"errors"
	"io/fs"
	"syscall"

	"github.com/jmgilman/go/fspath/core"
	fserrors "github.com/jmgilman/go/fspath/errors"
)

// hostError wraps a host failure for op on p. The code is derived from err
// and err stays in the chain. Errors that already carry a code are returned
// unchanged. An optional target is recorded for two-path operations.
func hostError(op string, p Path, err error, target ...Path) error {
	if err == nil {
		return nil
	}
	var coded fserrors.Error
	if errors.As(err, &coded) {
		return err
	}

	ctx := map[string]any{"op": op}
	message := op
	if !p.IsZero() {
		ctx["path"] = p.String()
		message = op + " " + p.String()
	}
	if len(target) > 0 && !target[0].IsZero() {
		ctx["target"] = target[0].String()
	}
	return fserrors.WrapWithContext(err, classifyHost(err), message, ctx)
}

// classifyHost maps host errors to error codes. Order matters: ENOTEMPTY
// also matches fs.ErrExist.
//
//nolint:gocyclo,cyclop // each case is a simple mapping
func classifyHost(err error) fserrors.ErrorCode {
	switch {
	case errors.Is(err, syscall.ENOTEMPTY):
		return fserrors.CodeDirectoryNotEmpty
	case errors.Is(err, fs.ErrNotExist):
		return fserrors.CodeNotFound
	case errors.Is(err, fs.ErrExist):
		return fserrors.CodeAlreadyExists
	case errors.Is(err, syscall.EROFS):
		return fserrors.CodeReadOnly
	case errors.Is(err, fs.ErrPermission):
		return fserrors.CodeForbidden
	case errors.Is(err, syscall.ENOTDIR):
		return fserrors.CodeNotDirectory
	case errors.Is(err, syscall.EISDIR):
		return fserrors.CodeIsDirectory
	case errors.Is(err, syscall.EXDEV):
		return fserrors.CodeCrossDevice
	case errors.Is(err, syscall.ELOOP):
		return fserrors.CodeLoop
	case errors.Is(err, core.ErrUnsupported),
		errors.Is(err, errors.ErrUnsupported),
		errors.Is(err, syscall.ENOTSUP),
		errors.Is(err, syscall.EOPNOTSUPP):
		return fserrors.CodeUnsupported
	case errors.Is(err, fs.ErrClosed):
		return fserrors.CodeClosed
	case errors.Is(err, syscall.EBUSY), errors.Is(err, syscall.EAGAIN):
		return fserrors.CodeBusy
	case errors.Is(err, syscall.EINTR):
		return fserrors.CodeInterrupted
	case errors.Is(err, syscall.EINVAL), errors.Is(err, fs.ErrInvalid):
		return fserrors.CodeInvalidInput
	default:
		return fserrors.CodeIO
	}
}

// unsupported reports a capability the host does not provide.
func unsupported(op string, p Path) error {
	return hostError(op, p, core.ErrUnsupported)
}

func notFound(op string, p Path, message string) error {
	ctx := map[string]any{"op": op, "path": p.String()}
	return fserrors.WithContextMap(fserrors.New(fserrors.CodeNotFound, message), ctx)
}
