package s3

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/minio/minio-go/v7"
)

// translate maps S3 error responses onto io/fs sentinels and errnos.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NoSuchUpload":
		return fs.ErrNotExist
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fs.ErrPermission
	case "SlowDown", "ServiceUnavailable", "RequestTimeout":
		return syscall.EBUSY
	case "InvalidArgument", "InvalidBucketName", "KeyTooLongError":
		return syscall.EINVAL
	}
	return fmt.Errorf("s3: %w", err)
}

func pathError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return err
	}
	return &fs.PathError{Op: op, Path: name, Err: err}
}

func errno(op, name string, e syscall.Errno) error {
	return &fs.PathError{Op: op, Path: name, Err: e}
}
