//go:build linux

package billy

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/jmgilman/go/fspath/core"
)

const mountTable = "/proc/self/mounts"

// Owner returns the numeric user and group ids of the named file.
func (l *LocalFS) Owner(name string, follow bool) (int, int, error) {
	name = normalize(name)
	stat := os.Lstat
	if follow {
		stat = os.Stat
	}
	info, err := stat(name)
	if err != nil {
		return 0, 0, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, &fs.PathError{Op: "owner", Path: name, Err: core.ErrUnsupported}
	}
	return int(st.Uid), int(st.Gid), nil
}

// Access checks effective access for the calling process.
func (l *LocalFS) Access(name string, mode core.AccessMode) error {
	name = normalize(name)
	var bits uint32
	if mode&core.AccessRead != 0 {
		bits |= unix.R_OK
	}
	if mode&core.AccessWrite != 0 {
		bits |= unix.W_OK
	}
	if mode&core.AccessExecute != 0 {
		bits |= unix.X_OK
	}
	if err := unix.Access(name, bits); err != nil {
		return &fs.PathError{Op: "access", Path: name, Err: err}
	}
	return nil
}

// GetXattr returns the value of an extended attribute.
func (l *LocalFS) GetXattr(name, attr string) ([]byte, error) {
	name = normalize(name)
	for {
		size, err := unix.Getxattr(name, attr, nil)
		if err != nil {
			return nil, &fs.PathError{Op: "getxattr", Path: name, Err: err}
		}
		buf := make([]byte, size)
		n, err := unix.Getxattr(name, attr, buf)
		if errors.Is(err, unix.ERANGE) {
			// value grew between the two calls
			continue
		}
		if err != nil {
			return nil, &fs.PathError{Op: "getxattr", Path: name, Err: err}
		}
		return buf[:n], nil
	}
}

// SetXattr sets the value of an extended attribute.
func (l *LocalFS) SetXattr(name, attr string, data []byte) error {
	name = normalize(name)
	if err := unix.Setxattr(name, attr, data, 0); err != nil {
		return &fs.PathError{Op: "setxattr", Path: name, Err: err}
	}
	return nil
}

// ListXattr returns the names of all extended attributes.
func (l *LocalFS) ListXattr(name string) ([]string, error) {
	name = normalize(name)
	size, err := unix.Listxattr(name, nil)
	if err != nil {
		return nil, &fs.PathError{Op: "listxattr", Path: name, Err: err}
	}
	buf := make([]byte, size)
	n, err := unix.Listxattr(name, buf)
	if err != nil {
		return nil, &fs.PathError{Op: "listxattr", Path: name, Err: err}
	}
	var names []string
	for _, attr := range bytes.Split(buf[:n], []byte{0}) {
		if len(attr) > 0 {
			names = append(names, string(attr))
		}
	}
	return names, nil
}

// Stores returns every mounted volume with its capacity.
// Mounts that cannot be queried are skipped.
func (l *LocalFS) Stores() ([]core.Store, error) {
	f, err := os.Open(mountTable)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var stores []core.Store
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		store := core.Store{
			Name:     fields[0],
			Mount:    unescapeMount(fields[1]),
			Type:     fields[2],
			ReadOnly: hasOption(fields[3], "ro"),
		}
		if err := fillCapacity(&store); err != nil {
			continue
		}
		stores = append(stores, store)
	}
	return stores, scanner.Err()
}

// StoreOf returns the store containing the named file.
func (l *LocalFS) StoreOf(name string) (core.Store, error) {
	resolved, err := filepath.EvalSymlinks(normalize(name))
	if err != nil {
		return core.Store{}, err
	}
	stores, err := l.Stores()
	if err != nil {
		return core.Store{}, err
	}

	best := -1
	for i, s := range stores {
		if !within(resolved, s.Mount) {
			continue
		}
		if best < 0 || len(s.Mount) >= len(stores[best].Mount) {
			best = i
		}
	}
	if best < 0 {
		return core.Store{}, &fs.PathError{Op: "statfs", Path: resolved, Err: fs.ErrNotExist}
	}
	return stores[best], nil
}

func fillCapacity(s *core.Store) error {
	var st unix.Statfs_t
	if err := unix.Statfs(s.Mount, &st); err != nil {
		return err
	}
	bsize := int64(st.Bsize)
	s.Total = int64(st.Blocks) * bsize
	s.Usable = int64(st.Bavail) * bsize
	s.Unallocated = int64(st.Bfree) * bsize
	return nil
}

func within(name, mount string) bool {
	if mount == "/" {
		return true
	}
	return name == mount || strings.HasPrefix(name, mount+"/")
}

func hasOption(options, want string) bool {
	for _, opt := range strings.Split(options, ",") {
		if opt == want {
			return true
		}
	}
	return false
}

// unescapeMount decodes the octal escapes used for spaces and tabs in the
// mount table.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var (
	_ core.OwnerFS  = (*LocalFS)(nil)
	_ core.AccessFS = (*LocalFS)(nil)
	_ core.XattrFS  = (*LocalFS)(nil)
	_ core.StoreFS  = (*LocalFS)(nil)
)
