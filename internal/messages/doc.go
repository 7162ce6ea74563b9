// Package messages provides a centralized schema for all NATS messaging contracts.
//
// This package consolidates all message types, subject patterns, and validation logic
// into a single source of truth, providing:
//
//   - Type-safe message construction with fluent builders
//   - Centralized subject constants to eliminate hardcoded strings
//   - Validation methods to ensure message integrity
//   - Type-safe publisher for command and event publishing
//
// # Message Types
//
//   - Commands: lines typed into a session's terminal (TerminalCommandMessage)
//   - Events: what a session's engine did (TerminalStateEvent,
//     CommandExecutedEvent, HistoryClearEvent)
//
// # Subject Patterns
//
// Pattern constants are used for consumer subscriptions (e.g.
// "terminal.session.*.command"); builder functions generate concrete subjects
// (e.g. TerminalStateSubject("abc") → "event.terminal.session.abc.state").
//
// # Usage Example
//
//	cmd := messages.NewTerminalCommandMessage(sid, "projects").WithPath("/projects")
//
//	publisher := messages.NewPublisher(js)
//	if err := publisher.PublishCommand(ctx, cmd); err != nil {
//	    return err
//	}
package messages
