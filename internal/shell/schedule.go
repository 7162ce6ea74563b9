package shell

import (
	"sync"
	"time"
)

// Scheduler runs f once after d. The returned stop func cancels a timer that
// has not fired yet. AfterFunc must not call f before returning.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// timers tracks scheduled callbacks so Dispose can invalidate them.
type timers struct {
	// wg counts timers that are scheduled and have neither fired nor been
	// stopped.
	wg     sync.WaitGroup
	mu     sync.Mutex
	next   uint64
	stops  map[uint64]func() bool
	closed bool
}

// schedule registers f with s. It returns false when the set is closed.
func (t *timers) schedule(s Scheduler, d time.Duration, f func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	if t.stops == nil {
		t.stops = map[uint64]func() bool{}
	}
	id := t.next
	t.next++
	t.wg.Add(1)
	t.stops[id] = s.AfterFunc(d, func() {
		defer t.wg.Done()
		t.mu.Lock()
		_, live := t.stops[id]
		delete(t.stops, id)
		closed := t.closed
		t.mu.Unlock()
		if live && !closed {
			f()
		}
	})
	return true
}

// close stops every pending timer. Callbacks that already started see
// closed and return without running.
func (t *timers) close() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	n := 0
	for id, stop := range t.stops {
		if stop() {
			t.wg.Done()
			n++
		}
		delete(t.stops, id)
	}
	return n
}
