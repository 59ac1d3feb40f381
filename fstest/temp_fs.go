package fstest

import (
	"path"
	"strings"
	"testing"

	"github.com/jmgilman/go/fspath/core"
)

// TestTempFS tests TempFile and TempDir.
func TestTempFS(t *testing.T, filesystem core.FS, tfs core.TempFS, root string) {
	t.Run("TempFilePattern", func(t *testing.T) {
		f, err := tfs.TempFile(root, "pre-*.tmp")
		if err != nil {
			t.Fatalf("TempFile(%q): got error %v, want nil", root, err)
		}
		defer func() { _ = f.Close() }()

		base := path.Base(f.Name())
		if !strings.HasPrefix(base, "pre-") || !strings.HasSuffix(base, ".tmp") {
			t.Errorf("TempFile name %q does not match pattern %q", base, "pre-*.tmp")
		}
		if path.Dir(f.Name()) != root {
			t.Errorf("TempFile dir: got %q, want %q", path.Dir(f.Name()), root)
		}
		if _, err := f.Write([]byte("data")); err != nil {
			t.Errorf("Write(): got error %v", err)
		}
	})

	t.Run("TempDirUnique", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 5 {
			dir, err := tfs.TempDir(root, "dir")
			if err != nil {
				t.Fatalf("TempDir(%q): got error %v, want nil", root, err)
			}
			if seen[dir] {
				t.Errorf("TempDir returned %q twice", dir)
			}
			seen[dir] = true
			info, err := filesystem.Stat(dir)
			if err != nil || !info.IsDir() {
				t.Errorf("Stat(%q): got %v, want directory", dir, err)
			}
		}
	})
}
