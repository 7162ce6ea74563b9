package platform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"termfolio/internal/messages"
	"termfolio/internal/runtime"

	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// UIStream is the SSE handler for /ui. It replays the latest event of each
// kind for the session, then follows new ones until the client goes away.
func UIStream(js jetstream.JetStream) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := SessionID(r)
		if sid == "" {
			http.Error(w, "missing session ID", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		subs := []string{messages.TerminalEventsSubject(sid)}

		cons, err := js.CreateConsumer(ctx, messages.EventStream, jetstream.ConsumerConfig{
			AckPolicy:         jetstream.AckNonePolicy,
			FilterSubjects:    subs,
			DeliverPolicy:     jetstream.DeliverLastPerSubjectPolicy,
			InactiveThreshold: time.Minute,
		})
		if err != nil {
			slog.Warn("ui: create consumer", "sid", sid, "err", err)
			http.Error(w, "stream unavailable", http.StatusServiceUnavailable)
			return
		}
		name := cons.CachedInfo().Name
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := js.DeleteConsumer(dctx, messages.EventStream, name); err != nil && !errors.Is(err, jetstream.ErrConsumerNotFound) {
				slog.Debug("ui: delete consumer", "sid", sid, "err", err)
			}
		}()

		it, err := cons.Messages()
		if err != nil {
			slog.Warn("ui: messages", "sid", sid, "err", err)
			http.Error(w, "stream unavailable", http.StatusServiceUnavailable)
			return
		}
		go func() {
			<-ctx.Done()
			it.Stop()
		}()

		sse := datastar.NewSSE(w, r)
		renderers := runtime.ForSubjects(subs)
		slog.Debug("ui: stream open", "sid", sid, "renderers", len(renderers))

		for {
			msg, err := it.Next()
			if err != nil {
				if !errors.Is(err, jetstream.ErrMsgIteratorClosed) {
					slog.Warn("ui: next", "sid", sid, "err", err)
				}
				return
			}
			if err := runtime.Render(ctx, renderers, msg, sse); err != nil {
				slog.Warn("render", "subj", msg.Subject(), "err", err)
			}
		}
	}
}
