package fstest

import (
	"os"
	"testing"
	"time"

	"github.com/jmgilman/go/fspath/core"
)

const watchTimeout = 5 * time.Second

// TestWatchFS tests that a watcher reports creation, modification and
// removal of entries in a watched directory.
func TestWatchFS(t *testing.T, filesystem core.FS, wfs core.WatchFS, root string) {
	w, err := wfs.Watch()
	if err != nil {
		t.Fatalf("Watch(): got error %v, want nil", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(root); err != nil {
		t.Fatalf("Add(%q): got error %v, want nil", root, err)
	}

	name := join(root, "watched.txt")
	mustWrite(t, filesystem, name, "")
	awaitOp(t, w, name, core.OpCreate)

	f, err := filesystem.OpenFile(name, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("OpenFile(%q): got error %v", name, err)
	}
	_, _ = f.Write([]byte("change"))
	_ = f.Close()
	awaitOp(t, w, name, core.OpWrite)

	if err := filesystem.Remove(name); err != nil {
		t.Fatalf("Remove(%q): got error %v", name, err)
	}
	awaitOp(t, w, name, core.OpRemove)
}

func awaitOp(t *testing.T, w core.Watcher, name string, op core.Op) {
	t.Helper()
	timeout := time.After(watchTimeout)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				t.Fatalf("watcher closed while waiting for %v on %q", op, name)
			}
			if ev.Name == name && ev.Op.Has(op) {
				return
			}
		case err := <-w.Errors():
			t.Fatalf("watcher error while waiting for %v on %q: %v", op, name, err)
		case <-timeout:
			t.Fatalf("timed out waiting for %v on %q", op, name)
		}
	}
}
