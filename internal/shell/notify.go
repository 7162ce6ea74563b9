package shell

import (
	"sync"
	"time"
)

// Listener receives side-effect notifications. Calls are fire-and-forget
// and happen outside the engine lock.
type Listener interface {
	CommandExecuted(name string)
	HistoryClearRequested()
}

// ListenerFuncs adapts plain funcs to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnExecuted     func(name string)
	OnHistoryClear func()
}

func (l ListenerFuncs) CommandExecuted(name string) {
	if l.OnExecuted != nil {
		l.OnExecuted(name)
	}
}

func (l ListenerFuncs) HistoryClearRequested() {
	if l.OnHistoryClear != nil {
		l.OnHistoryClear()
	}
}

// Recorder receives metrics hooks.
type Recorder interface {
	Executed(class Class, outcome string)
	AsyncStarted(name string)
	AsyncSettled(name string, d time.Duration, err error)
}

// Outcome labels passed to Recorder.Executed.
const (
	OutcomeOK       = "ok"
	OutcomeAsync    = "async"
	OutcomeClear    = "clear"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type nopRecorder struct{}

func (nopRecorder) Executed(Class, string)                    {}
func (nopRecorder) AsyncStarted(string)                       {}
func (nopRecorder) AsyncSettled(string, time.Duration, error) {}

// notice is a deferred notification, collected under the engine lock and
// delivered after it is released.
type notice struct {
	executed     []string
	historyClear bool
	changed      bool
}

func (n *notice) commandExecuted(name string) { n.executed = append(n.executed, name) }

func (n notice) empty() bool {
	return len(n.executed) == 0 && !n.historyClear && !n.changed
}

// hub keeps listener and observer registrations.
type hub struct {
	mu        sync.Mutex
	next      int
	listeners map[int]Listener
	observers map[int]func(Snapshot)
}

func (h *hub) addListener(l Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = map[int]Listener{}
	}
	id := h.next
	h.next++
	h.listeners[id] = l
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

func (h *hub) addObserver(fn func(Snapshot)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.observers == nil {
		h.observers = map[int]func(Snapshot){}
	}
	id := h.next
	h.next++
	h.observers[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.observers, id)
			h.mu.Unlock()
		})
	}
}

func (h *hub) snapshotListeners() ([]Listener, []func(Snapshot)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ls := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		ls = append(ls, l)
	}
	obs := make([]func(Snapshot), 0, len(h.observers))
	for _, o := range h.observers {
		obs = append(obs, o)
	}
	return ls, obs
}

func (h *hub) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = nil
	h.observers = nil
}
