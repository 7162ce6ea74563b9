package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"termfolio/internal/shell"

	"github.com/nats-io/nats.go/jetstream"
)

// =============================================================================
// CONSTRUCTORS - Easy message creation
// =============================================================================

// NewTerminalCommandMessage creates a terminal command message
func NewTerminalCommandMessage(sessionID, cmd string) *TerminalCommandMessage {
	return &TerminalCommandMessage{
		SessionID: sessionID,
		Cmd:       cmd,
	}
}

// WithPath records the page path the line was typed on
func (c *TerminalCommandMessage) WithPath(path string) *TerminalCommandMessage {
	c.Path = path
	return c
}

// NewTerminalStateEvent creates a state event from an engine snapshot
func NewTerminalStateEvent(sessionID string, snap shell.Snapshot) *TerminalStateEvent {
	return &TerminalStateEvent{
		SessionID: sessionID,
		State:     snap,
		EmittedAt: time.Now(),
	}
}

// NewCommandExecutedEvent creates a command executed event
func NewCommandExecutedEvent(sessionID, name string) *CommandExecutedEvent {
	return &CommandExecutedEvent{
		SessionID:  sessionID,
		Name:       name,
		ExecutedAt: time.Now(),
	}
}

// NewHistoryClearEvent creates a history clear event
func NewHistoryClearEvent(sessionID string) *HistoryClearEvent {
	return &HistoryClearEvent{
		SessionID:   sessionID,
		RequestedAt: time.Now(),
	}
}

// =============================================================================
// PUBLISHER - Type-safe message publishing
// =============================================================================

// JetStreamPublisher is the slice of jetstream.JetStream the Publisher needs.
type JetStreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher provides type-safe message publishing
type Publisher struct {
	js JetStreamPublisher
}

// NewPublisher creates a new type-safe publisher
func NewPublisher(js JetStreamPublisher) *Publisher {
	return &Publisher{js: js}
}

// PublishCommand publishes a command with validation
func (p *Publisher) PublishCommand(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	_, err = p.js.Publish(ctx, cmd.Subject(), data)
	if err != nil {
		return fmt.Errorf("publish command: %w", err)
	}

	return nil
}

// PublishEvent publishes an event with validation
func (p *Publisher) PublishEvent(ctx context.Context, evt Event) error {
	if err := evt.Validate(); err != nil {
		return fmt.Errorf("event validation failed: %w", err)
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = p.js.Publish(ctx, evt.Subject(), data)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

// =============================================================================
// UTILITIES - Helper functions for common operations
// =============================================================================

// TerminalCommandType names TerminalCommandMessage for BuildCommand.
const TerminalCommandType = "TerminalCommandMessage"

// BuildCommand creates a typed command from UI form data
func BuildCommand(messageType string, data map[string]any) (Command, error) {
	switch messageType {
	case TerminalCommandType:
		sessionID, _ := data["session_id"].(string)
		cmdText, _ := data["cmd"].(string)
		path, _ := data["path"].(string)
		return NewTerminalCommandMessage(sessionID, cmdText).WithPath(path), nil

	default:
		return nil, fmt.Errorf("unknown command type: %s", messageType)
	}
}
