// Package internal contains helpers that are intentionally private to
// chatgate.
//
// # Sub-packages
//
//   - lifecycle — event-to-state transition controller for session clients
//   - rate — Redis-backed fixed-window rate limit primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public chatgate API.
//   - Be imported by any package outside the chatgate module.
package internal
