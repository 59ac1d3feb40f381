// Package fspath is a path and file-operation layer over a host filesystem.
//
// Every operation accepts loosely typed arguments and coerces them into a
// canonical Path before delegating to the host. Strings, []string segment
// lists, file URIs, *os.File handles and Path values are all accepted, and
// downstream packages can add their own shapes with RegisterPathCoercer:
//
//	data, err := fspath.ReadAllBytes("/etc/hostname")
//	p, err := fspath.ToPath("/var", "log", "app.log")
//	p, err := fspath.ToPath(&url.URL{Scheme: "file", Path: "/tmp/x"})
//
// # File systems
//
// A Path belongs to a FileSystem, which binds a host (any core.FS) to a URI
// scheme and authority, a working directory and a read-only flag. The default
// FileSystem uses the local host and the process working directory and is
// created on first use. Additional FileSystems are created with NewFileSystem
// and made reachable from URIs with Mount:
//
//	mem := fspath.NewFileSystem(billy.NewMemory(), fspath.WithScheme("mem"))
//	_ = fspath.Mount(mem)
//	p, _ := fspath.ToPath(&url.URL{Scheme: "mem", Path: "/data"})
//
// # Operations
//
// Path algebra (Resolve, Relativize, Normalize, ...) is pure. Queries,
// mutations, content operations and Copy delegate to the host and wrap its
// failures in errors.Error values whose code is derived from the host error;
// the original error stays in the chain, so errors.Is(err, fs.ErrNotExist)
// keeps working.
//
// Option lists (LinkOption, CopyOption, OpenOption, WriteOption) may be given
// in any order and are folded into a fixed flag set before the host call.
//
// # Traversal
//
// WalkFileTree drives a FileVisitor over a tree depth first. Visitor and
// NaiveVisitor build a FileVisitor from plain functions; missing callbacks get
// default behavior.
//
// # Watching
//
// NewWatchService and Register subscribe to changes in a directory. Event
// kinds may be given as WatchEventKind values or as the tags "entry-create",
// "entry-delete" and "entry-modify". Polling and resetting keys is up to the
// caller.
package fspath
