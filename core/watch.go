package core

import "strings"

// Op describes a set of change operations.
type Op uint32

const (
	// OpCreate reports a new entry.
	OpCreate Op = 1 << iota
	// OpWrite reports changed content.
	OpWrite
	// OpRemove reports a removed entry.
	OpRemove
	// OpRename reports an entry renamed away from this name.
	OpRename
	// OpChmod reports changed attributes.
	OpChmod
)

// Has reports whether o contains every bit of other.
func (o Op) Has(other Op) bool {
	return o&other == other
}

// String returns the set bits joined with "|".
func (o Op) String() string {
	var parts []string
	for _, n := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	} {
		if o.Has(n.op) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Event is a single change reported by a Watcher.
type Event struct {
	// Name is the absolute name of the changed entry.
	Name string
	// Op is the set of operations observed.
	Op Op
}

// Watcher delivers change events for the directories added to it.
// Events for the direct children of a watched directory are reported.
type Watcher interface {
	// Events returns the event channel. It is closed by Close.
	Events() <-chan Event

	// Errors returns the error channel. ErrEventOverflow is sent when events
	// were dropped. It is closed by Close.
	Errors() <-chan error

	// Add starts watching the named directory.
	Add(name string) error

	// Remove stops watching the named directory.
	Remove(name string) error

	// Close stops the watcher and releases its resources.
	Close() error
}

// WatchFS creates watchers.
type WatchFS interface {
	Watch() (Watcher, error)
}
