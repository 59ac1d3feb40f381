package billy

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"path"
	"strconv"
	"strings"
	"syscall"
)

// normalize returns the clean absolute form of name.
// Unrooted io/fs names such as "." or "a/b" are taken relative to "/".
func normalize(name string) string {
	return path.Join("/", strings.ReplaceAll(name, "\\", "/"))
}

// pathError wraps err in an *fs.PathError unless it already carries a path.
func pathError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *fs.PathError
	var le *os.LinkError
	if errors.As(err, &pe) || errors.As(err, &le) {
		return err
	}
	return &fs.PathError{Op: op, Path: name, Err: err}
}

// errno builds an *fs.PathError for a syscall error.
func errno(op, name string, e syscall.Errno) error {
	return &fs.PathError{Op: op, Path: name, Err: e}
}

// dirEntry wraps fs.FileInfo to implement fs.DirEntry.
type dirEntry struct {
	info fs.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

func toEntries(infos []fs.FileInfo) []fs.DirEntry {
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}
	return entries
}

// namedInfo reports the requested base name for info obtained through a link.
type namedInfo struct {
	fs.FileInfo
	name string
}

func (n namedInfo) Name() string { return n.name }

// tempName expands a TempFile/TempDir pattern with a random component.
func tempName(dir, pattern string) string {
	random := strconv.FormatUint(uint64(rand.Uint32()), 10)
	if i := strings.LastIndex(pattern, "*"); i >= 0 {
		return path.Join(dir, pattern[:i]+random+pattern[i+1:])
	}
	return path.Join(dir, pattern+random)
}

const tempAttempts = 10000
