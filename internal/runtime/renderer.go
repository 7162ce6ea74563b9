package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"termfolio/util"

	"github.com/a-h/templ"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// Sink is the part of the datastar SSE generator renderers write to.
type Sink interface {
	MergeFragmentTempl(c templ.Component, opts ...datastar.MergeFragmentOption) error
	MergeSignals(signalsContents []byte, opts ...datastar.MergeSignalsOption) error
}

// RenderFunc renders one message into the SSE stream.
type RenderFunc func(ctx context.Context, msg jetstream.Msg, sse Sink) error

type Renderer struct {
	Pattern    string
	MatchFunc  func(string) bool
	RenderFunc RenderFunc
}

// RendererSpec is a catalogue entry: a wildcard pattern and a factory that
// builds a concrete Renderer for one UI stream. Renderers of the same stream
// share sig.
type RendererSpec struct {
	Pattern string
	Build   func(subj string, sig *Signals) Renderer
}

// Specs is filled by renderers.go during init and treated as read-only.
var Specs []RendererSpec

// ForSubjects returns the renderers for one UI stream subscribed to
// subjects. The fallback renderer is always last.
func ForSubjects(subjects []string) []Renderer {
	sig := NewSignals()
	out := make([]Renderer, 0, len(Specs)+1)
	seen := make(map[string]struct{})
	for _, s := range subjects {
		for _, spec := range Specs {
			if !util.SubjectsOverlap(s, spec.Pattern) {
				continue
			}
			key := spec.Pattern + "|" + s
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, spec.Build(spec.Pattern, sig))
		}
	}
	return append(out, fallback)
}

// Render hands msg to the first renderer that matches its subject.
func Render(ctx context.Context, renderers []Renderer, msg jetstream.Msg, sse Sink) error {
	for _, r := range renderers {
		if r.MatchFunc(msg.Subject()) {
			return r.RenderFunc(ctx, msg, sse)
		}
	}
	return nil
}

func newRenderer(pattern string, fn RenderFunc) Renderer {
	return Renderer{
		Pattern:    pattern,
		MatchFunc:  func(subj string) bool { return util.SubjectMatches(pattern, subj) },
		RenderFunc: fn,
	}
}

// newTypedRenderer decodes the JSON payload into T and invokes handler.
func newTypedRenderer[T any](pattern string, handler func(context.Context, jetstream.Msg, Sink, T) error) Renderer {
	return newRenderer(pattern, func(ctx context.Context, msg jetstream.Msg, sse Sink) error {
		var p T
		dec := json.NewDecoder(bytes.NewReader(msg.Data()))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("decode %T: %w", p, err)
		}
		return handler(ctx, msg, sse, p)
	})
}

var fallback = newRenderer(">", func(_ context.Context, msg jetstream.Msg, _ Sink) error {
	slog.Debug("render: no renderer for subject", "subject", msg.Subject(), "bytes", len(msg.Data()))
	return nil
})

// Signals tracks the datastar signals already sent on one stream so only
// changes go over the wire.
type Signals struct {
	mu  sync.Mutex
	cur []byte
}

func NewSignals() *Signals {
	return &Signals{cur: []byte("{}")}
}

// Merge applies update (any JSON object) to the tracked signals and returns
// the RFC 7386 merge patch from the old state to the new one, or nil when
// nothing changed.
func (s *Signals) Merge(update any) ([]byte, error) {
	raw, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("marshal signals: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := jsonpatch.MergePatch(s.cur, raw)
	if err != nil {
		return nil, fmt.Errorf("merge signals: %w", err)
	}
	diff, err := jsonpatch.CreateMergePatch(s.cur, next)
	if err != nil {
		return nil, fmt.Errorf("diff signals: %w", err)
	}
	s.cur = next
	if bytes.Equal(diff, []byte("{}")) {
		return nil, nil
	}
	return diff, nil
}
