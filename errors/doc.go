// Package errors provides the structured error type returned by fspath and its
// host implementations.
//
// Every error carries an ErrorCode naming the failure, a retry classification,
// an optional context map (typically the operation and the offending path or
// input) and the underlying cause. Causes stay reachable through Unwrap, so
// checks against io/fs sentinels keep working on wrapped host failures:
//
//	_, err := fspath.ReadAllBytes("/etc/missing")
//	if errors.HasCode(err, errors.CodeNotFound) { ... }
//	if stderrors.Is(err, fs.ErrNotExist) { ... } // also true
//
// Errors fall into two tiers. Coercion errors (CodeUnsupportedInput,
// CodeUnsupportedEventKind, CodeInvalidInput, CodeIllegalRelativization,
// CodeFileSystemNotFound) are raised before any host call is attempted. All
// other codes describe a failure reported by the host filesystem.
//
// The string form of an error is "[CODE] message" or "[CODE] message: cause".
package errors
