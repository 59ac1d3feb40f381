//go:build linux

package billy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmgilman/go/fspath/core"
)

func TestUnescapeMount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/mnt/plain", "/mnt/plain"},
		{`/mnt/with\040space`, "/mnt/with space"},
		{`/mnt/tab\011x`, "/mnt/tab\tx"},
		{`/mnt/trailing\04`, `/mnt/trailing\04`},
	}
	for _, tt := range tests {
		if got := unescapeMount(tt.in); got != tt.want {
			t.Errorf("unescapeMount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocalFS_Owner(t *testing.T) {
	l := NewLocal()
	name := filepath.Join(t.TempDir(), "o")
	_ = l.WriteFile(name, nil, 0o644)
	uid, gid, err := l.Owner(name, true)
	if err != nil {
		t.Fatalf("Owner() error = %v", err)
	}
	if uid != os.Getuid() || gid != os.Getgid() {
		t.Errorf("Owner() = %d:%d, want %d:%d", uid, gid, os.Getuid(), os.Getgid())
	}
}

func TestLocalFS_Access(t *testing.T) {
	l := NewLocal()
	name := filepath.Join(t.TempDir(), "a")
	_ = l.WriteFile(name, nil, 0o644)
	if err := l.Access(name, core.AccessRead|core.AccessWrite); err != nil {
		t.Errorf("Access(rw) error = %v", err)
	}
	if err := l.Access(name+".missing", core.AccessRead); err == nil {
		t.Error("Access(missing) error = nil, want error")
	}
}

func TestLocalFS_StoreOf(t *testing.T) {
	l := NewLocal()
	store, err := l.StoreOf(t.TempDir())
	if err != nil {
		t.Fatalf("StoreOf() error = %v", err)
	}
	if store.Mount == "" || store.Type == "" {
		t.Errorf("StoreOf() = %+v, want mount and type", store)
	}
	stores, err := l.Stores()
	if err != nil {
		t.Fatalf("Stores() error = %v", err)
	}
	found := false
	for _, s := range stores {
		if s.Mount == store.Mount {
			found = true
		}
	}
	if !found {
		t.Errorf("Stores() does not contain %q", store.Mount)
	}
}
