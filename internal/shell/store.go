package shell

import (
	"slices"

	"github.com/rs/xid"
)

// Entry is one rendered transcript item.
type Entry struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	Output  string `json:"output"`
	RawHTML bool   `json:"raw_html,omitempty"`
	Error   bool   `json:"error,omitempty"`
}

// Snapshot is a point-in-time copy of the engine state.
type Snapshot struct {
	History     []string `json:"history"`
	Transcript  []Entry  `json:"transcript"`
	Awaiting    bool     `json:"awaiting"`
	Pending     string   `json:"pending,omitempty"`
	LastCommand string   `json:"last_command,omitempty"`
}

// store holds the two append-only sequences plus the async flags.
// Callers hold the engine lock.
type store struct {
	history    []string
	transcript []Entry
	awaiting   bool
	pending    string
	last       string
}

func newEntry(cmd, out string, raw bool) Entry {
	return Entry{ID: xid.New().String(), Command: cmd, Output: out, RawHTML: raw}
}

func (s *store) pushHistory(line string) { s.history = append(s.history, line) }

func (s *store) appendOutput(cmd, out string, raw bool) {
	s.transcript = append(s.transcript, newEntry(cmd, out, raw))
}

func (s *store) appendError(cmd, msg string) {
	e := newEntry(cmd, msg, false)
	e.Error = true
	s.transcript = append(s.transcript, e)
}

func (s *store) clearTranscript() { s.transcript = nil }

func (s *store) setPending(name string) {
	s.awaiting = true
	s.pending = name
}

func (s *store) resetPending() {
	s.awaiting = false
	s.pending = ""
}

func (s *store) snapshot() Snapshot {
	return Snapshot{
		History:     slices.Clone(s.history),
		Transcript:  slices.Clone(s.transcript),
		Awaiting:    s.awaiting,
		Pending:     s.pending,
		LastCommand: s.last,
	}
}
