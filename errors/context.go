package errors

import (
	"errors"
	"maps"
)

// WithContext adds a single context field to an error.
// Existing context fields are preserved.
//
// If err is not an Error, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	err = errors.WithContext(err, "path", "/var/log")
func WithContext(err error, key string, value any) Error {
	return WithContextMap(err, map[string]any{key: value})
}

// WithContextMap adds multiple context fields to an error.
// New fields override existing ones with the same key.
//
// If err is not an Error, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
func WithContextMap(err error, ctx map[string]any) Error {
	if err == nil {
		return nil
	}

	var coded Error
	if !errors.As(err, &coded) {
		coded = &codedError{
			code:           CodeUnknown,
			classification: ClassificationPermanent,
			message:        err.Error(),
			cause:          err,
		}
	}

	merged := make(map[string]any, len(ctx))
	maps.Copy(merged, coded.Context())
	maps.Copy(merged, ctx)

	return &codedError{
		code:           coded.Code(),
		classification: coded.Classification(),
		message:        coded.Message(),
		context:        merged,
		cause:          coded.Unwrap(),
	}
}
