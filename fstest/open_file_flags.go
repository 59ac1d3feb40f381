package fstest

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/jmgilman/go/fspath/core"
)

var flagTests = []struct {
	name    string
	flag    int
	exists  bool
	content string
}{
	{"O_WRONLY", os.O_WRONLY, true, "XYcdef"},
	{"O_WRONLY|O_TRUNC", os.O_WRONLY | os.O_TRUNC, true, "XY"},
	{"O_WRONLY|O_APPEND", os.O_WRONLY | os.O_APPEND, true, "abcdefXY"},
	{"O_WRONLY|O_SYNC|O_TRUNC", os.O_WRONLY | os.O_SYNC | os.O_TRUNC, true, "XY"},
	{"O_WRONLY|O_CREATE", os.O_WRONLY | os.O_CREATE, false, "XY"},
	{"O_WRONLY|O_CREATE|O_EXCL", os.O_WRONLY | os.O_CREATE | os.O_EXCL, false, "XY"},
	{"O_RDWR", os.O_RDWR, true, "XYcdef"},
	{"O_RDWR|O_CREATE|O_TRUNC", os.O_RDWR | os.O_CREATE | os.O_TRUNC, true, "XY"},
}

// TestOpenFileFlags tests OpenFile flag handling. A host that cannot honor a
// flag combination must fail with core.ErrUnsupported.
func TestOpenFileFlags(t *testing.T, filesystem core.FS, root string) {
	for _, tt := range flagTests {
		t.Run(tt.name, func(t *testing.T) {
			name := join(root, "flags.txt")
			if tt.exists {
				mustWrite(t, filesystem, name, "abcdef")
			} else {
				_ = filesystem.Remove(name)
			}

			f, err := filesystem.OpenFile(name, tt.flag, 0o644)
			if errors.Is(err, core.ErrUnsupported) {
				t.Skipf("OpenFile(%q, %s): unsupported by host", name, tt.name)
			}
			if err != nil {
				t.Fatalf("OpenFile(%q, %s): got error %v, want nil", name, tt.name, err)
			}
			if _, err := f.Write([]byte("XY")); err != nil {
				_ = f.Close()
				t.Fatalf("Write(): got error %v", err)
			}
			if err := f.Close(); err != nil {
				t.Fatalf("Close(): got error %v", err)
			}
			if got := mustRead(t, filesystem, name); got != tt.content {
				t.Errorf("ReadFile(%q) after %s: got %q, want %q", name, tt.name, got, tt.content)
			}
		})
	}

	t.Run("O_RDONLY", func(t *testing.T) {
		name := join(root, "readonly.txt")
		mustWrite(t, filesystem, name, "abcdef")

		f, err := filesystem.OpenFile(name, os.O_RDONLY, 0)
		if err != nil {
			t.Fatalf("OpenFile(%q, O_RDONLY): got error %v", name, err)
		}
		defer func() { _ = f.Close() }()

		data, err := io.ReadAll(f)
		if err != nil || string(data) != "abcdef" {
			t.Errorf("ReadAll(): got %q, %v, want %q", data, err, "abcdef")
		}
		if _, err := f.Write([]byte("XY")); err == nil {
			t.Errorf("Write() on read-only handle: got nil error, want failure")
		}
	})

	t.Run("MissingWithoutCreate", func(t *testing.T) {
		name := join(root, "absent.txt")
		for _, flag := range []int{os.O_RDONLY, os.O_WRONLY, os.O_WRONLY | os.O_TRUNC} {
			f, err := filesystem.OpenFile(name, flag, 0o644)
			if f != nil {
				_ = f.Close()
			}
			if !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("OpenFile(%q, %#o): got error %v, want fs.ErrNotExist", name, flag, err)
			}
		}
	})
}
