package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"termfolio/internal/messages"
	"termfolio/internal/runtime"

	"github.com/nats-io/nats.go/jetstream"
)

// EnsureStreams creates the EVENT stream the terminal publishes to. The
// TERMINAL stream is owned by the TerminalEngine.
func EnsureStreams(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:              messages.EventStream,
		Subjects:          []string{"event.>"},
		Storage:           jetstream.FileStorage,
		MaxMsgsPerSubject: 16,
		MaxAge:            24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("create %s stream: %w", messages.EventStream, err)
	}
	return nil
}

// Run starts the terminal runtime on js and blocks until ctx is done.
func Run(ctx context.Context, js jetstream.JetStream, cfg *AppConfig, c *runtime.Content) error {
	if err := EnsureStreams(ctx, js); err != nil {
		return err
	}
	slog.Info("stream ready", "stream", messages.EventStream)

	InitMetrics()
	b := runtime.NewBuiltins(c, nil)
	te := runtime.NewTerminalEngine(js, b.Registry(),
		runtime.WithTerminalLogger(slog.Default()),
		runtime.WithTerminalRecorder(EngineMetrics),
		runtime.WithIdleTTL(cfg.SessionIdleTTL),
	)
	if err := te.Start(ctx); err != nil {
		return fmt.Errorf("terminal engine: %w", err)
	}
	slog.Info("TerminalEngine started successfully", "commands", len(b.Registry()))

	<-ctx.Done()
	slog.Info("Run: shutdown requested")
	te.Stop()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}
