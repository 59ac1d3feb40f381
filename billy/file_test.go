package billy

import (
	"io"
	"testing"
)

func TestFile_ReadWriteSeek(t *testing.T) {
	m := NewMemory()
	f, err := m.Create("/f.txt")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	if f.Name() != "/f.txt" {
		t.Errorf("Name() = %q, want /f.txt", f.Name())
	}
	if _, err := f.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	bf := f.(*File)
	if _, err := bf.Seek(6, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	buf := make([]byte, 5)
	if _, err := io.ReadFull(bf, buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(buf) != "world" {
		t.Errorf("Read() = %q, want world", buf)
	}
	if _, err := bf.Read(buf); err != io.EOF {
		t.Errorf("Read() at end error = %v, want io.EOF", err)
	}

	if err := bf.Truncate(5); err != nil {
		t.Fatalf("Truncate() error = %v", err)
	}
	info, err := bf.Stat()
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() != 5 {
		t.Errorf("Stat().Size() = %d, want 5", info.Size())
	}
	if err := bf.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}

func TestFile_LocalSync(t *testing.T) {
	l := NewLocal()
	f, err := l.Create(t.TempDir() + "/f")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write([]byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := f.(*File).Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}
