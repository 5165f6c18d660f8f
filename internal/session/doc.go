// Package session holds the authenticated identity (bearer token + username) for the client.
//
// A [Store] is created once at startup with a durable [Backend] and injected into the
// gateway and profile lifecycle. It enforces the all-or-nothing invariant: a session either
// has both a token and a username, or neither.
//
// Backends:
//   - [FileBackend] : JSON file written atomically with 0600 permissions
//   - [MemoryBackend] : process-local, used in tests
//   - repositories.SessionRepository : single-row SQLite table
package session
