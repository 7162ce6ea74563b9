package shell

// handleClear empties the transcript and, when asked, schedules the welcome
// replay. Command-line history is left alone. Caller holds e.mu.
func (e *Engine) handleClear(class Class, result Result, n *notice) {
	e.st.clearTranscript()

	if result.ClearHistory && !class.suppressesNotify() {
		n.historyClear = true
	}
	if result.RunAfterClear == nil {
		return
	}
	out := *result.RunAfterClear
	e.timers.schedule(e.sched, e.replayDelay, func() { e.replay(class, out) })
}

// replay replaces the transcript with a single welcome entry.
func (e *Engine) replay(class Class, out Output) {
	var n notice
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.st.transcript = []Entry{newEntry(WelcomeCommand, out.Content, out.RawHTML)}
	n.changed = true
	if !class.suppressesNotify() {
		n.commandExecuted(WelcomeCommand)
	}
	e.mu.Unlock()
	e.deliver(n)
}
