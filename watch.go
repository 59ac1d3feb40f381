package fspath

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/jmgilman/go/fspath/core"
	fserrors "github.com/jmgilman/go/fspath/errors"
)

// maxPendingEvents is the number of events a key holds before they collapse
// into a single Overflow event.
const maxPendingEvents = 512

// WatchEventKind identifies the kind of a WatchEvent.
type WatchEventKind interface {
	Name() string
}

type standardKind string

func (k standardKind) Name() string   { return string(k) }
func (k standardKind) String() string { return string(k) }

// Standard event kinds.
const (
	EntryCreate standardKind = "ENTRY_CREATE"
	EntryDelete standardKind = "ENTRY_DELETE"
	EntryModify standardKind = "ENTRY_MODIFY"
	// Overflow reports that events were lost. It is delivered whatever kinds
	// a key was registered for.
	Overflow standardKind = "OVERFLOW"
)

// PassthroughKind carries a value that is not one of the standard kinds.
type PassthroughKind struct {
	Value any
}

// Name returns the value formatted with fmt.Sprint.
func (k PassthroughKind) Name() string {
	return fmt.Sprint(k.Value)
}

// WatchModifier qualifies how a directory is watched.
type WatchModifier interface {
	watchModifier()
}

// Sensitivity is a polling sensitivity hint. Hosts that push events ignore it.
type Sensitivity int

// Sensitivity levels.
const (
	SensitivityHigh Sensitivity = iota + 1
	SensitivityMedium
	SensitivityLow
)

func (Sensitivity) watchModifier() {}

// WatchEvent is a change to an entry of a watched directory.
type WatchEvent struct {
	// Kind is the kind of change.
	Kind WatchEventKind
	// Count is the number of consecutive identical events folded into this one.
	Count int
	// Context is the entry's name relative to the watched directory. It is the
	// zero Path for Overflow.
	Context Path
}

func (e WatchEvent) String() string {
	return fmt.Sprintf("%s %s (%d)", e.Kind.Name(), e.Context.String(), e.Count)
}

// WatchKey is the registration of a directory with a WatchService.
type WatchKey struct {
	svc     *WatchService
	dir     Path
	hostDir string

	// guarded by svc.mu
	kinds     map[WatchEventKind]struct{}
	valid     bool
	signalled bool
	events    []WatchEvent
}

// Watchable returns the watched directory.
func (k *WatchKey) Watchable() Path {
	return k.dir
}

// IsValid reports whether the key is still registered.
func (k *WatchKey) IsValid() bool {
	k.svc.mu.Lock()
	defer k.svc.mu.Unlock()
	return k.valid
}

// PollEvents removes and returns the pending events.
func (k *WatchKey) PollEvents() []WatchEvent {
	k.svc.mu.Lock()
	defer k.svc.mu.Unlock()
	events := k.events
	k.events = nil
	return events
}

// Reset makes a signalled key ready for new events. A key with pending events
// is queued again at once. Reset reports whether the key is still valid.
func (k *WatchKey) Reset() bool {
	k.svc.mu.Lock()
	defer k.svc.mu.Unlock()
	if !k.valid {
		return false
	}
	if len(k.events) > 0 {
		k.svc.enqueue(k)
	} else {
		k.signalled = false
	}
	return true
}

// Cancel stops watching the directory. Pending events can still be polled.
func (k *WatchKey) Cancel() {
	k.svc.mu.Lock()
	if !k.valid {
		k.svc.mu.Unlock()
		return
	}
	k.valid = false
	delete(k.svc.keys, k.hostDir)
	closed := k.svc.closed
	k.svc.mu.Unlock()

	if !closed {
		if err := k.svc.watcher.Remove(k.hostDir); err != nil {
			k.svc.fsys.logger.Debug("removing watch", "dir", k.dir.String(), "error", err)
		}
	}
}

// signal records ev on the key and queues the key if it is ready.
// The caller holds svc.mu.
func (k *WatchKey) signal(ev WatchEvent) {
	if !k.valid {
		return
	}
	if _, ok := k.kinds[ev.Kind]; !ok && ev.Kind != Overflow {
		return
	}
	switch n := len(k.events); {
	case n > 0 && k.events[n-1].Kind == ev.Kind && k.events[n-1].Context == ev.Context:
		k.events[n-1].Count += ev.Count
	case n >= maxPendingEvents:
		k.events = []WatchEvent{{Kind: Overflow, Count: n + ev.Count}}
	default:
		k.events = append(k.events, ev)
	}
	if !k.signalled {
		k.svc.enqueue(k)
	}
}

// WatchService queues WatchKeys whose directories changed.
//
// The caller owns the service: keys are taken with Poll, PollTimeout or Take,
// drained with PollEvents and handed back with Reset, and the service is
// released with Close.
type WatchService struct {
	fsys    *FileSystem
	watcher core.Watcher

	mu     sync.Mutex
	keys   map[string]*WatchKey
	queue  []*WatchKey
	closed bool

	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewWatchService creates a WatchService on the host's change notifications.
func (fsys *FileSystem) NewWatchService() (*WatchService, error) {
	if err := fsys.checkOpen("watch"); err != nil {
		return nil, err
	}
	wfs, ok := fsys.host.(core.WatchFS)
	if !ok {
		return nil, unsupported("watch", Path{})
	}
	w, err := wfs.Watch()
	if err != nil {
		return nil, hostError("watch", Path{}, err)
	}
	svc := &WatchService{
		fsys:    fsys,
		watcher: w,
		keys:    make(map[string]*WatchKey),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	svc.wg.Add(1)
	go svc.pump()
	fsys.logger.Debug("watch service started", "filesystem", fsys.String())
	return svc, nil
}

// enqueue queues k. The caller holds s.mu.
func (s *WatchService) enqueue(k *WatchKey) {
	k.signalled = true
	s.queue = append(s.queue, k)
	s.wake()
}

func (s *WatchService) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// next pops the head of the queue.
func (s *WatchService) next() (*WatchKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, s.closedError()
	}
	if len(s.queue) == 0 {
		return nil, nil
	}
	k := s.queue[0]
	s.queue = s.queue[1:]
	if len(s.queue) > 0 {
		s.wake()
	}
	return k, nil
}

func (s *WatchService) closedError() error {
	return fserrors.WithContext(fserrors.New(fserrors.CodeClosed, "watch service is closed"), "filesystem", s.fsys.String())
}

// Poll returns the next signalled key, or nil if none is queued.
func (s *WatchService) Poll() (*WatchKey, error) {
	return s.next()
}

// PollTimeout waits up to d for a signalled key and returns nil on timeout.
func (s *WatchService) PollTimeout(d time.Duration) (*WatchKey, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		k, err := s.next()
		if err != nil || k != nil {
			return k, err
		}
		select {
		case <-s.notify:
		case <-s.done:
			return nil, s.closedError()
		case <-timer.C:
			return s.next()
		}
	}
}

// Take waits for a signalled key until ctx is done.
func (s *WatchService) Take(ctx context.Context) (*WatchKey, error) {
	for {
		k, err := s.next()
		if err != nil || k != nil {
			return k, err
		}
		select {
		case <-s.notify:
		case <-s.done:
			return nil, s.closedError()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close invalidates every key and stops the service. Closing twice is a
// no-op.
func (s *WatchService) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, k := range s.keys {
		k.valid = false
	}
	s.keys = nil
	s.queue = nil
	s.mu.Unlock()

	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	s.fsys.logger.Debug("watch service closed", "filesystem", s.fsys.String())
	return hostError("watch", Path{}, err)
}

func (s *WatchService) pump() {
	defer s.wg.Done()
	events, errs := s.watcher.Events(), s.watcher.Errors()
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.dispatch(ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.hostFailure(err)
		case <-s.done:
			return
		}
	}
}

// dispatch routes a host event to the key of its parent directory. Removing
// a watched directory invalidates its key and queues it.
func (s *WatchService) dispatch(ev core.Event) {
	name := path.Clean(ev.Name)
	s.mu.Lock()
	defer s.mu.Unlock()

	if k, ok := s.keys[name]; ok && (ev.Op.Has(core.OpRemove) || ev.Op.Has(core.OpRename)) {
		k.valid = false
		delete(s.keys, name)
		if !k.signalled {
			s.enqueue(k)
		}
	}

	k, ok := s.keys[path.Dir(name)]
	if !ok {
		return
	}
	entry := newPath(s.fsys, path.Base(name))
	for _, kind := range eventKinds(ev.Op) {
		k.signal(WatchEvent{Kind: kind, Count: 1, Context: entry})
	}
}

func eventKinds(op core.Op) []WatchEventKind {
	var kinds []WatchEventKind
	if op.Has(core.OpCreate) {
		kinds = append(kinds, EntryCreate)
	}
	if op.Has(core.OpWrite) || op.Has(core.OpChmod) {
		kinds = append(kinds, EntryModify)
	}
	if op.Has(core.OpRemove) || op.Has(core.OpRename) {
		kinds = append(kinds, EntryDelete)
	}
	return kinds
}

func (s *WatchService) hostFailure(err error) {
	if !errors.Is(err, core.ErrEventOverflow) {
		s.fsys.logger.Warn("watch host error", "filesystem", s.fsys.String(), "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		k.signal(WatchEvent{Kind: Overflow, Count: 1})
	}
}

// Register watches the directory p with svc for the given kinds, each
// coerced with ToWatchEventKind. Registering a directory again returns the
// existing key with the new kinds.
//
// p must be a directory of svc's FileSystem. Only the standard kinds and
// Sensitivity modifiers are supported.
//
// Example:
//
//	key, err := fspath.Register("/var/spool", svc, []any{"entry-create", fspath.EntryDelete})
func Register(p any, svc *WatchService, kinds []any, mods ...WatchModifier) (*WatchKey, error) {
	if svc == nil {
		return nil, fserrors.New(fserrors.CodeInvalidInput, "watch service is nil")
	}
	dir, err := openPath("register", p)
	if err != nil {
		return nil, err
	}
	if dir.fsys != svc.fsys {
		return nil, fserrors.WithContextMap(
			fserrors.New(fserrors.CodeInvalidInput, "path and watch service belong to different file systems"),
			map[string]any{"path": dir.String(), "filesystem": svc.fsys.String()})
	}
	set, err := kindSet(kinds)
	if err != nil {
		return nil, err
	}
	for _, m := range mods {
		if _, ok := m.(Sensitivity); !ok {
			return nil, fserrors.WithContext(
				fserrors.New(fserrors.CodeUnsupported, "unsupported watch modifier"),
				"modifier", fmt.Sprintf("%T", m))
		}
	}

	info, err := dir.fsys.host.Stat(dir.hostName())
	if err != nil {
		return nil, hostError("register", dir, err)
	}
	if !info.IsDir() {
		return nil, fserrors.WithContextMap(
			fserrors.New(fserrors.CodeNotDirectory, "only directories can be watched"),
			map[string]any{"op": "register", "path": dir.String()})
	}

	hostDir := dir.hostName()
	if k := svc.existingKey(hostDir, set); k != nil {
		return k, nil
	}
	if err := svc.watcher.Add(hostDir); err != nil {
		return nil, hostError("register", dir, err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.closed {
		return nil, svc.closedError()
	}
	if k, ok := svc.keys[hostDir]; ok {
		k.kinds = set
		return k, nil
	}
	k := &WatchKey{svc: svc, dir: dir, hostDir: hostDir, kinds: set, valid: true}
	svc.keys[hostDir] = k
	svc.fsys.logger.Debug("registered watch", "dir", dir.String(), "kinds", len(set))
	return k, nil
}

func (s *WatchService) existingKey(hostDir string, kinds map[WatchEventKind]struct{}) *WatchKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[hostDir]
	if !ok {
		return nil
	}
	k.kinds = kinds
	return k
}

func kindSet(kinds []any) (map[WatchEventKind]struct{}, error) {
	if len(kinds) == 0 {
		return nil, fserrors.New(fserrors.CodeInvalidInput, "no watch event kinds given")
	}
	set := make(map[WatchEventKind]struct{}, len(kinds))
	for _, in := range kinds {
		kind, err := ToWatchEventKind(in)
		if err != nil {
			return nil, err
		}
		if _, ok := kind.(standardKind); !ok {
			return nil, fserrors.WithContext(
				fserrors.Newf(fserrors.CodeUnsupported, "unsupported watch event kind %q", kind.Name()),
				"kind", kind.Name())
		}
		set[kind] = struct{}{}
	}
	return set, nil
}
