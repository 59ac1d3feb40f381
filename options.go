package fspath

import "log/slog"

// Option configures a FileSystem.
type Option func(*fileSystemOptions)

type fileSystemOptions struct {
	scheme     string
	authority  string
	workingDir string
	readOnly   bool
	logger     *slog.Logger
}

// WithScheme sets the URI scheme identifying the FileSystem.
// Defaults to "file" for local hosts and "mem" for everything else.
func WithScheme(scheme string) Option {
	return func(o *fileSystemOptions) {
		o.scheme = scheme
	}
}

// WithAuthority sets the URI authority, distinguishing several FileSystems
// that share a scheme.
//
// Example:
//
//	fsys := fspath.NewFileSystem(billy.NewMemory(),
//	    fspath.WithScheme("mem"), fspath.WithAuthority("fixtures"))
func WithAuthority(authority string) Option {
	return func(o *fileSystemOptions) {
		o.authority = authority
	}
}

// WithWorkingDirectory sets the absolute directory relative paths are
// resolved against. Defaults to "/".
func WithWorkingDirectory(dir string) Option {
	return func(o *fileSystemOptions) {
		o.workingDir = dir
	}
}

// WithReadOnly rejects every mutation with CodeReadOnly.
func WithReadOnly() Option {
	return func(o *fileSystemOptions) {
		o.readOnly = true
	}
}

// WithLogger sets the logger used for debug and warning records.
// A nil logger discards records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *fileSystemOptions) {
		o.logger = logger
	}
}
