// Package registry provides the authoritative in-memory store of gateway
// sessions and the session model.
//
// Membership in the [Store] is the single source of truth for whether a
// session exists; there is no separate existence flag. Every mutation is
// keyed by session id, so concurrent operations on different ids never
// conflict, and insert-if-absent is a single atomic step so a duplicate
// create can never yield two client instances for one id.
//
// Entries are tagged with the owning client instance id. Mutators that act on
// behalf of a client event require a matching instance tag, which makes
// stale events from a destroyed client harmless no-ops even when the session
// id has been reused.
//
// # Architecture boundaries
//
// This package owns the [Session] model and the [Store]. It does NOT decide
// lifecycle transitions (the lifecycle controller does), render scan codes,
// or talk to the messaging network.
//
// # What this package must NOT do
//
//   - Import chatgate or internal/lifecycle (no upward imports).
//   - Expose raw client handles beyond what teardown requires.
//   - Mutate more than one entry per call.
package registry
