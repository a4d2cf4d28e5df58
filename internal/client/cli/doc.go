// Package cli provides the interactive CSVDesk command-line client.
//
// It wires configuration, the credential store, the HTTP gateway, the
// session manager and the realtime channel into an interactive REPL.
// Typical flow: restore the persisted session, start the realtime
// channel once authenticated, and execute user commands.
//
// Key features:
//   - Login / Signup / Logout with persisted tokens
//   - List / Show / Get CSV files
//   - Admin: Upload / Remove files, list and remove users
//   - Live notice when the server-side file list changes
//
// The REPL is started via App.Root(ctx), which blocks until the user
// exits. See App and runREPL for details.
package cli
