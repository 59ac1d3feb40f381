package billy

import (
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"

	"github.com/jmgilman/go/fspath/core"
)

// File wraps billy.File to implement both core.File and fs.File.
// It keeps the name the file was opened with, since billy backends report
// names in different formats.
type File struct {
	file billy.File
	name string
	stat func(name string) (fs.FileInfo, error)

	// onWrite is called after content changes; nil for hosts without
	// in-process notification.
	onWrite func(name string)
}

func newFile(f billy.File, name string, stat func(string) (fs.FileInfo, error), onWrite func(string)) *File {
	return &File{file: f, name: name, stat: stat, onWrite: onWrite}
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	n, err := f.file.Read(p)
	return n, f.wrap("read", err)
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	n, err := f.file.Write(p)
	if n > 0 {
		f.written()
	}
	return n, f.wrap("write", err)
}

// Close implements io.Closer.
func (f *File) Close() error {
	return f.wrap("close", f.file.Close())
}

// Stat returns the file's metadata through the owning host.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.stat(f.name)
}

// Name returns the name provided to Open or Create.
func (f *File) Name() string {
	return f.name
}

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}

// Truncate implements core.Truncater.
func (f *File) Truncate(size int64) error {
	if err := f.file.Truncate(size); err != nil {
		return f.wrap("truncate", err)
	}
	f.written()
	return nil
}

// Sync implements core.Syncer. Backends without Sync treat it as a no-op.
func (f *File) Sync() error {
	if syncer, ok := f.file.(interface{ Sync() error }); ok {
		return f.wrap("sync", syncer.Sync())
	}
	return nil
}

func (f *File) written() {
	if f.onWrite != nil {
		f.onWrite(f.name)
	}
}

func (f *File) wrap(op string, err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	return pathError(op, f.name, err)
}

// Compile-time interface checks.
var (
	_ core.File      = (*File)(nil)
	_ fs.File        = (*File)(nil)
	_ io.Seeker      = (*File)(nil)
	_ core.Truncater = (*File)(nil)
	_ core.Syncer    = (*File)(nil)
)
