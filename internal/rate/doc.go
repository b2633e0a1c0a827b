// Package rate provides internal primitives used to build Redis-backed rate
// limit keys, errors, and limiter behavior for the unauthenticated gateway
// endpoints.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key shape:
//   - <prefix>:rl:create:ip:<ip> — session creation per-IP
//   - <prefix>:rl:send:ip:<ip>   — message dispatch per-IP
//
// # What this package must NOT do
//
//   - Decide what happens on a limit hit (the engine maps the sentinel).
//   - Be imported outside the chatgate module.
package rate
