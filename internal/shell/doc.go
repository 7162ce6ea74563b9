// Package shell implements the command dispatch engine behind the terminal.
//
// An Engine owns a read-only Registry of commands and all of the state the
// terminal UI renders: the command-line recall history, the output
// transcript, the pending-async flags and the most recent command line.
//
// # Lifecycle of a line
//
//	Execute(line)
//	  -> Classify (Normal | Init | Event | Url) and Strip reserved prefixes
//	  -> resolve: registry, then aliases (incl. support -> contact)
//	  -> run the command
//	  -> append output now, later (async), or clear the transcript
//	  -> notify listeners unless the class suppresses it
//
// Execute never panics and never returns an error: every failure becomes an
// error entry in the transcript.
//
// # Notifications
//
// Listeners registered with Listen receive CommandExecuted and
// HistoryClearRequested. Observers registered with Observe receive a
// Snapshot after every state change. Both run outside the engine lock.
package shell
