package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"termfolio/internal/messages"
	"termfolio/internal/shell"
	"termfolio/util"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	terminalConsumer      = "TERMINAL_CMD"
	DefaultSessionIdleTTL = 30 * time.Minute
)

// TerminalEngine interprets terminal.session.*.command messages. Every
// session gets its own shell.Engine; what the engine does is published back
// to event.terminal.session.<sid>.{state,executed,histclear}.
type TerminalEngine struct {
	js        jetstream.JetStream
	publisher *messages.Publisher
	registry  shell.Registry
	log       *slog.Logger
	rec       shell.Recorder
	idleTTL   time.Duration
	shellOpts []shell.Option

	mu       sync.Mutex
	ctx      context.Context
	sessions map[string]*session
	cc       jetstream.ConsumeContext
	// stopJanitor ends sweepLoop independently of Start's ctx.
	stopJanitor context.CancelFunc
	janitor     sync.WaitGroup
}

type session struct {
	id       string
	eng      *shell.Engine
	lastSeen time.Time
	// serializes state publishes so the last one sent is the newest
	pubMu sync.Mutex
}

// TerminalOption configures a TerminalEngine.
type TerminalOption func(*TerminalEngine)

func WithTerminalLogger(l *slog.Logger) TerminalOption {
	return func(te *TerminalEngine) { te.log = l }
}

func WithTerminalRecorder(r shell.Recorder) TerminalOption {
	return func(te *TerminalEngine) { te.rec = r }
}

// WithIdleTTL sets how long a session may go without commands before its
// engine is disposed. Zero disables the janitor.
func WithIdleTTL(d time.Duration) TerminalOption {
	return func(te *TerminalEngine) { te.idleTTL = d }
}

// WithShellOptions appends options passed to every session engine.
func WithShellOptions(opts ...shell.Option) TerminalOption {
	return func(te *TerminalEngine) { te.shellOpts = append(te.shellOpts, opts...) }
}

func NewTerminalEngine(js jetstream.JetStream, reg shell.Registry, opts ...TerminalOption) *TerminalEngine {
	te := &TerminalEngine{
		js:        js,
		publisher: messages.NewPublisher(js),
		registry:  reg,
		log:       slog.Default(),
		idleTTL:   DefaultSessionIdleTTL,
		ctx:       context.Background(),
		sessions:  map[string]*session{},
	}
	for _, opt := range opts {
		opt(te)
	}
	return te
}

// Start ensures the TERMINAL stream, attaches a durable consumer and starts
// the idle janitor. It returns once consumption has begun.
func (te *TerminalEngine) Start(ctx context.Context) error {
	if _, err := te.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:      messages.TerminalStream,
		Subjects:  []string{messages.TerminalCommandSubjectPattern},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	}); err != nil && !errors.Is(err, jetstream.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("create %s stream: %w", messages.TerminalStream, err)
	}

	cons, err := te.js.CreateOrUpdateConsumer(ctx, messages.TerminalStream, jetstream.ConsumerConfig{
		Durable:        terminalConsumer,
		AckPolicy:      jetstream.AckExplicitPolicy,
		FilterSubjects: []string{messages.TerminalCommandSubjectPattern},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	te.mu.Lock()
	te.ctx = ctx
	te.mu.Unlock()

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		te.handleCommand(msg)
	})
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	te.mu.Lock()
	te.cc = cc
	te.mu.Unlock()

	if te.idleTTL > 0 {
		jctx, cancel := context.WithCancel(ctx)
		te.mu.Lock()
		te.stopJanitor = cancel
		te.mu.Unlock()
		te.janitor.Add(1)
		go te.sweepLoop(jctx)
	}
	return nil
}

// Stop halts consumption and disposes every session engine.
func (te *TerminalEngine) Stop() {
	te.mu.Lock()
	cc := te.cc
	te.cc = nil
	stopJanitor := te.stopJanitor
	te.stopJanitor = nil
	sessions := te.sessions
	te.sessions = map[string]*session{}
	te.mu.Unlock()

	if stopJanitor != nil {
		stopJanitor()
	}

	if cc != nil {
		cc.Stop()
	}
	for _, s := range sessions {
		s.eng.Dispose()
	}
	for _, s := range sessions {
		s.eng.Wait()
	}
	te.janitor.Wait()
}

func (te *TerminalEngine) handleCommand(msg jetstream.Msg) {
	var in messages.TerminalCommandMessage
	if err := json.Unmarshal(msg.Data(), &in); err != nil {
		te.log.Warn("terminal: bad cmd payload", "err", err)
		_ = msg.Term()
		return
	}
	if err := in.Validate(); err != nil {
		te.log.Warn("terminal: invalid cmd", "subject", msg.Subject(), "err", err)
		_ = msg.Term()
		return
	}
	if sid := util.SessionFromSubject(msg.Subject()); sid != in.SessionID {
		te.log.Warn("terminal: session mismatch", "subject", msg.Subject(), "sid", in.SessionID)
		_ = msg.Term()
		return
	}

	te.Dispatch(in)
	_ = msg.Ack()
}

// Dispatch runs one command line in the message's session.
func (te *TerminalEngine) Dispatch(in messages.TerminalCommandMessage) {
	s := te.session(in.SessionID)
	s.eng.SetPagePath(in.Path)
	s.eng.Execute(in.Cmd)
}

// Session returns the engine for sid if one is live.
func (te *TerminalEngine) Session(sid string) (*shell.Engine, bool) {
	te.mu.Lock()
	defer te.mu.Unlock()
	s, ok := te.sessions[sid]
	if !ok {
		return nil, false
	}
	return s.eng, true
}

// Sessions returns the number of live session engines.
func (te *TerminalEngine) Sessions() int {
	te.mu.Lock()
	defer te.mu.Unlock()
	return len(te.sessions)
}

func (te *TerminalEngine) session(sid string) *session {
	te.mu.Lock()
	defer te.mu.Unlock()

	if s, ok := te.sessions[sid]; ok {
		s.lastSeen = now()
		return s
	}

	log := te.log.With("sid", sid)
	opts := append([]shell.Option{shell.WithLogger(log)}, te.shellOpts...)
	if te.rec != nil {
		opts = append(opts, shell.WithRecorder(te.rec))
	}
	s := &session{id: sid, eng: shell.New(te.registry, opts...), lastSeen: now()}
	te.wire(te.ctx, s, log)
	te.sessions[sid] = s
	log.Info("terminal: session engine created")
	return s
}

func (te *TerminalEngine) wire(ctx context.Context, s *session, log *slog.Logger) {
	s.eng.Listen(shell.ListenerFuncs{
		OnExecuted: func(name string) {
			te.publish(ctx, log, messages.NewCommandExecutedEvent(s.id, name))
		},
		OnHistoryClear: func() {
			te.publish(ctx, log, messages.NewHistoryClearEvent(s.id))
			s.eng.ClearHistory()
		},
	})
	s.eng.Observe(func(shell.Snapshot) {
		s.pubMu.Lock()
		defer s.pubMu.Unlock()
		te.publish(ctx, log, messages.NewTerminalStateEvent(s.id, s.eng.Snapshot()))
	})
}

func (te *TerminalEngine) publish(ctx context.Context, log *slog.Logger, evt messages.Event) {
	if err := te.publisher.PublishEvent(ctx, evt); err != nil {
		log.Warn("terminal: publish event", "subject", evt.Subject(), "err", err)
	}
}

func (te *TerminalEngine) sweepLoop(ctx context.Context) {
	defer te.janitor.Done()
	every := max(te.idleTTL/2, time.Second)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := te.Sweep(now()); n > 0 {
				te.log.Info("terminal: idle sessions disposed", "count", n)
			}
		}
	}
}

// Sweep disposes sessions idle since before at-idleTTL and returns how many
// were removed.
func (te *TerminalEngine) Sweep(at time.Time) int {
	cutoff := at.Add(-te.idleTTL)

	te.mu.Lock()
	var idle []*session
	for sid, s := range te.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s)
			delete(te.sessions, sid)
		}
	}
	te.mu.Unlock()

	for _, s := range idle {
		s.eng.Dispose()
	}
	return len(idle)
}
