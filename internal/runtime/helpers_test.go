package runtime

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"termfolio/internal/shell"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testContent(t *testing.T) *Content {
	t.Helper()
	c, err := LoadContent(ContentFS(""))
	require.NoError(t, err)
	return c
}

// newShell returns an engine over the built-in commands with short delays.
func newShell(t *testing.T) *shell.Engine {
	t.Helper()
	b := NewBuiltins(testContent(t), nil)
	e := shell.New(b.Registry(),
		shell.WithLogger(quietLogger()),
		shell.WithRetryDelay(time.Millisecond),
		shell.WithReplayDelay(time.Millisecond),
	)
	t.Cleanup(func() {
		e.Dispose()
		e.Wait()
	})
	return e
}

// lastEntry runs line, waits for timers and async work, and returns the
// final transcript entry.
func lastEntry(t *testing.T, e *shell.Engine, line string) shell.Entry {
	t.Helper()
	e.Execute(line)
	e.Wait()
	tr := e.Snapshot().Transcript
	require.NotEmpty(t, tr)
	return tr[len(tr)-1]
}

// newJetStream starts an in-process JetStream server backed by a temp dir.
func newJetStream(t *testing.T) jetstream.JetStream {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		ServerName: "runtime_test",
		DontListen: true,
		JetStream:  true,
		StoreDir:   t.TempDir(),
	})
	require.NoError(t, err)
	go ns.Start()
	require.True(t, ns.ReadyForConnections(5*time.Second), "nats server not ready")

	nc, err := nats.Connect(ns.ClientURL(), nats.InProcessServer(ns))
	require.NoError(t, err)
	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     "EVENT",
		Subjects: []string{"event.>"},
		Storage:  jetstream.MemoryStorage,
	})
	require.NoError(t, err)
	return js
}
