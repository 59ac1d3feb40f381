// Package billy provides go-billy backed hosts implementing core.FS.
//
// LocalFS wraps osfs rooted at "/" and adds the capabilities the operating
// system offers: symbolic and hard links, permissions, ownership, times,
// access checks, extended attributes, file stores, atomic writes and change
// notification through fsnotify.
//
// MemoryFS wraps memfs. It resolves symbolic links itself (including
// intermediate components and loops), rebuilds renames so sibling entries
// sharing a name prefix are never touched, and publishes its own mutations to
// watchers, so it can stand in for the local host in tests:
//
//	mem := billy.NewMemory()
//	_ = mem.MkdirAll("/work", 0o755)
//	_ = mem.WriteFile("/work/a.txt", []byte("data"), 0o644)
//
// Both hosts take absolute slash-separated names and report failures as
// *fs.PathError values wrapping io/fs sentinels or syscall errnos.
//
// # Thread Safety
//
// Hosts are safe for concurrent use by multiple goroutines. File handles are
// not.
package billy
