package runtime

import (
	"context"

	"termfolio/internal/messages"
	"termfolio/ui/components"

	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// ─────────────────── TERMINAL EVENTS ───────────────────

// stateSignals are the engine flags mirrored into datastar signals.
type stateSignals struct {
	Awaiting bool   `json:"awaiting"`
	Pending  string `json:"pending"`
	Last     string `json:"last"`
}

func renderState(sig *Signals) func(context.Context, jetstream.Msg, Sink, messages.TerminalStateEvent) error {
	return func(_ context.Context, _ jetstream.Msg, sse Sink, evt messages.TerminalStateEvent) error {
		st := evt.State
		if err := sse.MergeFragmentTempl(components.Transcript(st.Transcript)); err != nil {
			return err
		}
		if err := sse.MergeFragmentTempl(components.History(st.History)); err != nil {
			return err
		}
		return mergeSignals(sse, sig, stateSignals{
			Awaiting: st.Awaiting,
			Pending:  st.Pending,
			Last:     st.LastCommand,
		})
	}
}

func renderExecuted(sig *Signals) func(context.Context, jetstream.Msg, Sink, messages.CommandExecutedEvent) error {
	return func(_ context.Context, _ jetstream.Msg, sse Sink, evt messages.CommandExecutedEvent) error {
		return mergeSignals(sse, sig, map[string]any{"active": evt.Name})
	}
}

func renderHistClear(sig *Signals) func(context.Context, jetstream.Msg, Sink, messages.HistoryClearEvent) error {
	return func(_ context.Context, _ jetstream.Msg, sse Sink, evt messages.HistoryClearEvent) error {
		if err := sse.MergeFragmentTempl(components.History(nil), datastar.WithSelectorID("history")); err != nil {
			return err
		}
		return mergeSignals(sse, sig, map[string]any{"histclear": evt.RequestedAt.UnixMilli()})
	}
}

func mergeSignals(sse Sink, sig *Signals, update any) error {
	patch, err := sig.Merge(update)
	if err != nil || patch == nil {
		return err
	}
	return sse.MergeSignals(patch)
}

// ─────────────────── REGISTRY ──────────────────────────

func init() {
	Specs = []RendererSpec{
		{Pattern: messages.TerminalStateSubjectPattern, Build: func(subj string, sig *Signals) Renderer {
			return newTypedRenderer(subj, renderState(sig))
		}},
		{Pattern: messages.TerminalExecutedSubjectPattern, Build: func(subj string, sig *Signals) Renderer {
			return newTypedRenderer(subj, renderExecuted(sig))
		}},
		{Pattern: messages.TerminalHistClearSubjectPattern, Build: func(subj string, sig *Signals) Renderer {
			return newTypedRenderer(subj, renderHistClear(sig))
		}},
	}
}
