// Package chatgate provides a multi-session chat-automation gateway engine:
// an in-process session registry, a per-session lifecycle state machine driven
// by messaging-client events, and outbound message dispatch with recipient
// normalization.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// chatgate is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (SessionInfo, MetricsSnapshot, AuditEvent, etc.). The
// messaging transport itself is an external collaborator consumed through the
// [client.Client] interface; chatgate never authenticates against the
// messaging network, drives a browser, or persists credentials. All internal
// coordination (lifecycle transitions, rate limiting) lives under internal/
// and is never exported.
//
// # What this package must NOT do
//
//   - Re-implement the messaging network's authentication handshake or wire
//     protocol (that is the client implementation's job).
//   - Expose raw scan codes to callers; only rendered QR payloads leave the
//     registry.
//   - Block a caller waiting for authentication. CreateSession schedules
//     initialization and returns; progress is observed by polling.
package chatgate
