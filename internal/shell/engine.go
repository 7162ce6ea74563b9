package shell

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	defaultRetryDelay  = time.Second
	defaultReplayDelay = 100 * time.Millisecond
)

// Engine dispatches command lines against a Registry and owns the terminal
// state. It is safe for concurrent use; mutations are serialized by an
// internal mutex and notifications are delivered after it is released.
type Engine struct {
	reg     Registry
	aliases aliasIndex

	log         *slog.Logger
	rec         Recorder
	sched       Scheduler
	retryDelay  time.Duration
	replayDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	st       store
	pagePath string
	disposed bool

	hub      hub
	timers   timers
	inflight sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRecorder installs metrics hooks.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.rec = r
		}
	}
}

// WithScheduler replaces the wall-clock timer source.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.sched = s
		}
	}
}

// WithRetryDelay sets the delay before a Url miss is retried as "help".
func WithRetryDelay(d time.Duration) Option {
	return func(e *Engine) { e.retryDelay = d }
}

// WithReplayDelay sets the delay between a clear and its welcome replay.
func WithReplayDelay(d time.Duration) Option {
	return func(e *Engine) { e.replayDelay = d }
}

// WithPagePath sets the initial page path used for Url classification.
func WithPagePath(p string) Option {
	return func(e *Engine) { e.pagePath = p }
}

// New returns an engine over reg.
func New(reg Registry, opts ...Option) *Engine {
	if reg == nil {
		reg = Registry{}
	}
	e := &Engine{
		reg:         reg,
		aliases:     buildAliasIndex(reg),
		log:         slog.Default(),
		rec:         nopRecorder{},
		sched:       wallClock{},
		retryDelay:  defaultRetryDelay,
		replayDelay: defaultReplayDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.ctx = withEngine(ctx, e)
	e.cancel = cancel
	return e
}

type engineCtxKey struct{}

func withEngine(ctx context.Context, e *Engine) context.Context {
	return context.WithValue(ctx, engineCtxKey{}, e)
}

// FromContext returns the engine running the current command.
func FromContext(ctx context.Context) (*Engine, bool) {
	e, ok := ctx.Value(engineCtxKey{}).(*Engine)
	return e, ok
}

// Registry returns the engine's registry. Callers must not modify it.
func (e *Engine) Registry() Registry { return e.reg }

// Resolve looks name up directly, then through aliases.
func (e *Engine) Resolve(name string) (Resolution, error) {
	return e.aliases.resolve(e.reg, name)
}

// Aliases returns the aliases that resolve to the named command, including
// the legacy fallback.
func (e *Engine) Aliases(name string) []string {
	var out []string
	for a, c := range e.aliases {
		if c == name {
			out = append(out, a)
		}
	}
	return out
}

// SetPagePath updates the page path used for Url classification.
func (e *Engine) SetPagePath(p string) {
	e.mu.Lock()
	e.pagePath = p
	e.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.snapshot()
}

// Listen registers l for side-effect notifications.
func (e *Engine) Listen(l Listener) (unsubscribe func()) {
	return e.hub.addListener(l)
}

// Observe registers fn to receive a snapshot after every state change.
func (e *Engine) Observe(fn func(Snapshot)) (cancel func()) {
	return e.hub.addObserver(fn)
}

// ClearHistory empties the command-line recall history.
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.st.history = nil
	e.mu.Unlock()
	e.deliver(notice{changed: true})
}

// Dispose cancels the engine context, stops pending timers and drops all
// listeners. Later timer callbacks and async completions are no-ops.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	e.mu.Unlock()

	e.cancel()
	stopped := e.timers.close()
	e.hub.clear()
	e.log.Debug("shell: engine disposed", "timers_stopped", stopped)
}

// Disposed reports whether Dispose has been called.
func (e *Engine) Disposed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disposed
}

// Wait blocks until no timer is pending and no async command is in flight.
// A resolver that never settles blocks Wait until it observes ctx.Done.
func (e *Engine) Wait() {
	e.timers.wg.Wait()
	e.inflight.Wait()
}

// Execute runs one command line. It never panics.
func (e *Engine) Execute(line string) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		e.log.Debug("shell: execute after dispose", "cmd", line)
		return
	}
	path := e.pagePath
	e.mu.Unlock()

	e.execute(line, Classify(line, path))
}

// execute runs line under an already decided class.
func (e *Engine) execute(line string, class Class) {
	if e.Disposed() {
		return
	}
	stripped := Strip(line)
	name, args := Parse(stripped)

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("shell: panic during execute", "cmd", stripped, "panic", r, "stack", string(debug.Stack()))
			e.fail(class, labelFor(stripped, line), fmt.Errorf("%v", r))
		}
	}()

	if name == "" {
		return
	}

	res, err := e.Resolve(name)
	if err != nil {
		e.notFound(class, stripped, name)
		return
	}

	result, err := e.run(res.Command, args)
	if err != nil {
		e.log.Warn("shell: command failed", "cmd", stripped, "class", class.String(), "err", err)
		e.fail(class, stripped, err)
		return
	}

	if res.ViaAlias {
		e.finishAlias(class, stripped, res, result)
		return
	}
	e.finishDirect(class, stripped, res, result)
}

func labelFor(stripped, line string) string {
	if stripped != "" {
		return stripped
	}
	return line
}

// run invokes the command, turning a panic into an error.
func (e *Engine) run(c *Command, args string) (res Result, err error) {
	if c.Run == nil {
		return Result{}, fmt.Errorf("command %q has no implementation", c.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Run(e.ctx, args)
}

func errorText(err error) string {
	return "Error executing command: " + err.Error()
}

func notFoundText(name string) string {
	return fmt.Sprintf("command not found: %s. Type 'help' to see available commands.", name)
}

func (e *Engine) fail(class Class, label string, err error) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.st.appendError(label, errorText(err))
	e.mu.Unlock()
	e.rec.Executed(class, OutcomeError)
	e.deliver(notice{changed: true})
}

func (e *Engine) notFound(class Class, stripped, name string) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.st.appendError(stripped, notFoundText(name))
	e.mu.Unlock()
	e.rec.Executed(class, OutcomeNotFound)
	e.log.Info("shell: command not found", "cmd", name, "class", class.String())

	if class == Url {
		e.timers.schedule(e.sched, e.retryDelay, func() { e.execute(HelpCommand, Normal) })
	}
	e.deliver(notice{changed: true})
}

// suppressesHistory reports whether the class keeps a line out of recall
// history.
func (c Class) suppressesHistory() bool { return c == Init || c == Url }

// suppressesNotify reports whether the class keeps "command executed"
// notifications from firing.
func (c Class) suppressesNotify() bool { return c == Init || c == Event }

func (e *Engine) finishDirect(class Class, stripped string, res Resolution, result Result) {
	var n notice
	var async AsyncFunc

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	if !class.suppressesHistory() && !result.NoHistory {
		e.st.pushHistory(stripped)
	}
	e.st.last = stripped
	n.changed = true

	// Url-triggered commands always notify, once, right after resolution.
	if class == Url {
		n.commandExecuted(res.Name)
	}

	outcome := OutcomeOK
	switch {
	case result.Async != nil:
		e.st.setPending(res.Name)
		async = result.Async
		outcome = OutcomeAsync
	case res.Name == ClearCommand:
		e.handleClear(class, result, &n)
		outcome = OutcomeClear
	default:
		e.st.appendOutput(stripped, result.Content, result.RawHTML)
		if !class.suppressesNotify() && class != Url {
			n.commandExecuted(res.Name)
		}
	}
	if async != nil {
		// Counted before the lock is released so Wait cannot miss it.
		e.inflight.Add(1)
	}
	e.mu.Unlock()

	e.rec.Executed(class, outcome)
	e.deliver(n)
	if async != nil {
		e.runAsync(class, stripped, res.Name, async, class != Url)
	}
}

// finishAlias appends output for an alias hit. The display line carries
// the canonical name and the clear protocol does not apply.
func (e *Engine) finishAlias(class Class, stripped string, res Resolution, result Result) {
	var n notice
	display := res.Display()

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	if !class.suppressesHistory() && !result.NoHistory {
		e.st.pushHistory(stripped)
	}
	e.st.last = display
	n.changed = true

	if result.Async != nil {
		e.st.setPending(res.Name)
		e.inflight.Add(1)
		e.mu.Unlock()
		e.rec.Executed(class, OutcomeAsync)
		e.deliver(n)
		e.runAsync(class, display, res.Name, result.Async, true)
		return
	}
	e.st.appendOutput(display, result.Content, result.RawHTML)
	if !class.suppressesNotify() {
		n.commandExecuted(res.Name)
	}
	e.mu.Unlock()

	e.rec.Executed(class, OutcomeOK)
	e.deliver(n)
}

// deliver fans a notice out to listeners and observers.
func (e *Engine) deliver(n notice) {
	if n.empty() {
		return
	}
	listeners, observers := e.hub.snapshotListeners()
	for _, name := range n.executed {
		for _, l := range listeners {
			e.safely("CommandExecuted", func() { l.CommandExecuted(name) })
		}
	}
	if n.historyClear {
		for _, l := range listeners {
			e.safely("HistoryClearRequested", l.HistoryClearRequested)
		}
	}
	if n.changed && len(observers) > 0 {
		snap := e.Snapshot()
		for _, o := range observers {
			e.safely("observer", func() { o(snap) })
		}
	}
}

func (e *Engine) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("shell: listener panic", "hook", what, "panic", r)
		}
	}()
	fn()
}
