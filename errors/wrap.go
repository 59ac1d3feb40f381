package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Wrap wraps err with a code and message while keeping err as the cause.
//
// If err already carries an Error, its classification is preserved.
// Returns nil if err is nil.
//
// Example:
//
//	if err := host.Remove(name); err != nil {
//	    return errors.Wrap(err, errors.CodeNotFound, "delete "+name)
//	}
func Wrap(err error, code ErrorCode, message string) Error {
	return WrapWithContext(err, code, message, nil)
}

// Wrapf wraps err with a formatted message.
//
// Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...any) Error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps err and attaches context metadata in one step.
// The context map is copied.
//
// Returns nil if err is nil.
//
// Example:
//
//	return errors.WrapWithContext(err, errors.CodeCrossDevice, "move failed", map[string]any{
//	    "path":   src,
//	    "target": dst,
//	})
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]any) Error {
	if err == nil {
		return nil
	}

	classification := getDefaultClassification(code)
	var coded Error
	if errors.As(err, &coded) {
		classification = coded.Classification()
	}

	var contextCopy map[string]any
	if ctx != nil {
		contextCopy = maps.Clone(ctx)
	}

	return &codedError{
		code:           code,
		classification: classification,
		message:        message,
		context:        contextCopy,
		cause:          err,
	}
}
