// Package client defines the capability surface the gateway consumes from a
// messaging client: asynchronous initialization, an event stream (scan code,
// ready/authenticated, disconnected), outbound message dispatch, and teardown.
//
// # Architecture boundaries
//
// This package owns only the contract. Production transports (the wwebjs
// sidecar bridge) and test doubles (clienttest) implement it; the engine and
// lifecycle controller consume it. Event delivery order per session follows
// the order the implementation emits; nothing is guaranteed across sessions.
//
// # What this package must NOT do
//
//   - Import chatgate or registry (no upward imports).
//   - Interpret scan codes or render them; raw codes pass through untouched.
package client
