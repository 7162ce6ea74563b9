package shell

import (
	"fmt"
	"time"
)

// runAsync awaits fn on its own goroutine. The pending flags are
// last-writer-wins: a second async command overwrites the pending name, and
// whichever settles first resets both flags. Completions land in settlement
// order. The caller has already done e.inflight.Add(1).
func (e *Engine) runAsync(class Class, display, name string, fn AsyncFunc, notify bool) {
	e.rec.AsyncStarted(name)
	go func() {
		defer e.inflight.Done()

		start := time.Now()
		out, err := e.await(fn)
		e.rec.AsyncSettled(name, time.Since(start), err)

		var n notice
		e.mu.Lock()
		if e.disposed {
			e.mu.Unlock()
			return
		}
		e.st.resetPending()
		n.changed = true
		if err != nil {
			e.st.appendError(display, errorText(err))
		} else {
			e.st.appendOutput(display, out.Content, out.RawHTML)
			if notify && !class.suppressesNotify() {
				n.commandExecuted(name)
			}
		}
		e.mu.Unlock()

		if err != nil {
			e.log.Warn("shell: async command failed", "cmd", display, "err", err)
		}
		e.deliver(n)
	}()
}

func (e *Engine) await(fn AsyncFunc) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(e.ctx)
}
