package billy

import (
	"errors"
	"path"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jmgilman/go/fspath/core"
)

// notifyWatcher adapts an fsnotify.Watcher to core.Watcher.
type notifyWatcher struct {
	w    *fsnotify.Watcher
	evC  chan core.Event
	erC  chan error
	done chan struct{}
	once sync.Once
}

func newNotifyWatcher(buffer int) (*notifyWatcher, error) {
	w, err := fsnotify.NewBufferedWatcher(uint(buffer))
	if err != nil {
		return nil, err
	}
	nw := &notifyWatcher{
		w:    w,
		evC:  make(chan core.Event, buffer),
		erC:  make(chan error, 1),
		done: make(chan struct{}),
	}
	go nw.loop()
	return nw, nil
}

func (nw *notifyWatcher) loop() {
	defer close(nw.evC)
	defer close(nw.erC)
	for {
		select {
		case ev, ok := <-nw.w.Events:
			if !ok {
				return
			}
			op := translateOp(ev.Op)
			if op == 0 {
				continue
			}
			select {
			case nw.evC <- core.Event{Name: ev.Name, Op: op}:
			case <-nw.done:
				return
			}
		case err, ok := <-nw.w.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				err = core.ErrEventOverflow
			}
			select {
			case nw.erC <- err:
			case <-nw.done:
				return
			}
		case <-nw.done:
			return
		}
	}
}

func translateOp(in fsnotify.Op) core.Op {
	var op core.Op
	if in.Has(fsnotify.Create) {
		op |= core.OpCreate
	}
	if in.Has(fsnotify.Write) {
		op |= core.OpWrite
	}
	if in.Has(fsnotify.Remove) {
		op |= core.OpRemove
	}
	if in.Has(fsnotify.Rename) {
		op |= core.OpRename
	}
	if in.Has(fsnotify.Chmod) {
		op |= core.OpChmod
	}
	return op
}

func (nw *notifyWatcher) Events() <-chan core.Event { return nw.evC }
func (nw *notifyWatcher) Errors() <-chan error      { return nw.erC }
func (nw *notifyWatcher) Add(name string) error     { return nw.w.Add(normalize(name)) }
func (nw *notifyWatcher) Remove(name string) error  { return nw.w.Remove(normalize(name)) }

func (nw *notifyWatcher) Close() error {
	var err error
	nw.once.Do(func() {
		close(nw.done)
		err = nw.w.Close()
	})
	return err
}

// hub fans memory host mutations out to its watchers.
type hub struct {
	mu       sync.Mutex
	watchers map[*memWatcher]struct{}
}

func newHub() *hub {
	return &hub{watchers: make(map[*memWatcher]struct{})}
}

func (h *hub) publish(name string, op core.Op) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		w.deliver(core.Event{Name: name, Op: op})
	}
}

func (h *hub) subscribe(buffer int) *memWatcher {
	w := &memWatcher{
		hub:  h,
		dirs: make(map[string]struct{}),
		evC:  make(chan core.Event, buffer),
		erC:  make(chan error, 1),
	}
	h.mu.Lock()
	h.watchers[w] = struct{}{}
	h.mu.Unlock()
	return w
}

func (h *hub) unsubscribe(w *memWatcher) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[w]; !ok {
		return false
	}
	delete(h.watchers, w)
	return true
}

// memWatcher receives events for the directories added to it.
// Delivery never blocks the publishing mutation; a full channel drops the
// event and reports core.ErrEventOverflow.
type memWatcher struct {
	hub *hub

	mu   sync.Mutex
	dirs map[string]struct{}
	evC  chan core.Event
	erC  chan error
}

// deliver is called with the hub lock held.
func (w *memWatcher) deliver(ev core.Event) {
	w.mu.Lock()
	_, parent := w.dirs[path.Dir(ev.Name)]
	_, self := w.dirs[ev.Name]
	w.mu.Unlock()
	if !parent && !self {
		return
	}
	select {
	case w.evC <- ev:
	default:
		select {
		case w.erC <- core.ErrEventOverflow:
		default:
		}
	}
}

func (w *memWatcher) Events() <-chan core.Event { return w.evC }
func (w *memWatcher) Errors() <-chan error      { return w.erC }

func (w *memWatcher) Add(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirs[normalize(name)] = struct{}{}
	return nil
}

func (w *memWatcher) Remove(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	name = normalize(name)
	if _, ok := w.dirs[name]; !ok {
		return errors.New("can't remove non-existent watch: " + name)
	}
	delete(w.dirs, name)
	return nil
}

func (w *memWatcher) Close() error {
	if w.hub.unsubscribe(w) {
		close(w.evC)
		close(w.erC)
	}
	return nil
}
