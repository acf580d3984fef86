// Package session holds the authoritative state of live games.
//
// The package implements:
//   - Session: one game between two bound participants
//   - Registry: thread-safe session storage and retrieval
//   - Randomized side assignment at creation
//   - One-way transition into the terminal state
//
// Ownership:
//
// A session is created only by pairing two participants; there is no way to
// join an existing session or play both sides from one identity. Each
// participant's identity resolves to exactly one side via SideOf, and all
// authorization decisions build on that mapping.
//
// Concurrency:
//
// The registry's lock covers only the session map. Each session carries its
// own mutex; callers hold it across a full read-validate-mutate cycle so
// concurrent actions against one game serialize while different games
// proceed in parallel. Position state is the starting FEN plus append-only
// move logs, which the rules engine replays to validate the next move.
//
// Usage:
//
//	registry := session.NewRegistry()
//	sess := registry.Create(white, black, startFEN, session.SideWhite)
//
//	sess.Lock()
//	// validate and apply an action
//	sess.Unlock()
//
// Terminal sessions are removed from the registry by the service once their
// outcome is recorded; afterwards lookups return ErrSessionNotFound.
package session
