package messages

import (
	"fmt"
	"regexp"
	"time"

	"termfolio/internal/shell"
)

// =============================================================================
// CORE INTERFACES
// =============================================================================

// Message represents any message in the system
type Message interface {
	Subject() string
	Validate() error
}

// Command represents an input that requests something to happen
type Command interface {
	Message
	IsCommand()
}

// Event represents something that has happened
type Event interface {
	Message
	IsEvent()
	Timestamp() time.Time
}

// =============================================================================
// SUBJECT CONSTANTS - Single source of truth for all subjects
// =============================================================================

const (
	// Stream names
	TerminalStream = "TERMINAL"
	EventStream    = "EVENT"

	// Terminal domain - Commands
	TerminalCommandSubjectPattern = "terminal.session.*.command" // * = session id

	// Terminal domain - Events
	TerminalEventSubjectPattern     = "event.terminal.session.*.>"
	TerminalStateSubjectPattern     = "event.terminal.session.*.state"
	TerminalExecutedSubjectPattern  = "event.terminal.session.*.executed"
	TerminalHistClearSubjectPattern = "event.terminal.session.*.histclear"
)

var sessionIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session_id is required")
	}
	if !sessionIDRegex.MatchString(id) {
		return fmt.Errorf("session_id must contain only alphanumeric characters, hyphens, and underscores")
	}
	return nil
}

// =============================================================================
// TERMINAL DOMAIN - COMMANDS
// =============================================================================

// TerminalCommandMessage represents a line entered in the terminal
type TerminalCommandMessage struct {
	SessionID string `json:"session_id"`
	Cmd       string `json:"cmd"`
	// Path is the page path the line was entered on, e.g. "/projects".
	Path string `json:"path,omitempty"`
}

func (c TerminalCommandMessage) Subject() string { return TerminalCommandSubject(c.SessionID) }
func (c TerminalCommandMessage) IsCommand()      {}
func (c TerminalCommandMessage) Validate() error {
	if err := validateSessionID(c.SessionID); err != nil {
		return err
	}
	if c.Cmd == "" {
		return fmt.Errorf("cmd is required")
	}
	return nil
}

// =============================================================================
// TERMINAL DOMAIN - EVENTS
// =============================================================================

// TerminalStateEvent carries the full engine state after a change
type TerminalStateEvent struct {
	SessionID string         `json:"session_id"`
	State     shell.Snapshot `json:"state"`
	EmittedAt time.Time      `json:"emitted_at"`
}

func (e TerminalStateEvent) Subject() string      { return TerminalStateSubject(e.SessionID) }
func (e TerminalStateEvent) IsEvent()             {}
func (e TerminalStateEvent) Timestamp() time.Time { return e.EmittedAt }
func (e TerminalStateEvent) Validate() error      { return validateSessionID(e.SessionID) }

// CommandExecutedEvent tells other page regions that a command ran
type CommandExecutedEvent struct {
	SessionID  string    `json:"session_id"`
	Name       string    `json:"name"`
	ExecutedAt time.Time `json:"executed_at"`
}

func (e CommandExecutedEvent) Subject() string      { return TerminalExecutedSubject(e.SessionID) }
func (e CommandExecutedEvent) IsEvent()             {}
func (e CommandExecutedEvent) Timestamp() time.Time { return e.ExecutedAt }
func (e CommandExecutedEvent) Validate() error {
	if err := validateSessionID(e.SessionID); err != nil {
		return err
	}
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// HistoryClearEvent asks recall-history consumers to empty their buffers
type HistoryClearEvent struct {
	SessionID   string    `json:"session_id"`
	RequestedAt time.Time `json:"requested_at"`
}

func (e HistoryClearEvent) Subject() string      { return TerminalHistClearSubject(e.SessionID) }
func (e HistoryClearEvent) IsEvent()             {}
func (e HistoryClearEvent) Timestamp() time.Time { return e.RequestedAt }
func (e HistoryClearEvent) Validate() error      { return validateSessionID(e.SessionID) }

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func TerminalCommandSubject(sessionID string) string {
	return fmt.Sprintf("terminal.session.%s.command", sessionID)
}

// TerminalEventsSubject is the filter for every event of one session.
func TerminalEventsSubject(sessionID string) string {
	return fmt.Sprintf("event.terminal.session.%s.>", sessionID)
}

func TerminalStateSubject(sessionID string) string {
	return fmt.Sprintf("event.terminal.session.%s.state", sessionID)
}

func TerminalExecutedSubject(sessionID string) string {
	return fmt.Sprintf("event.terminal.session.%s.executed", sessionID)
}

func TerminalHistClearSubject(sessionID string) string {
	return fmt.Sprintf("event.terminal.session.%s.histclear", sessionID)
}
