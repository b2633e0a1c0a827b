// Package middleware exposes HTTP middleware for the gateway API surface.
//
// # Provided middleware
//
//   - [CORS] — permissive cross-origin headers and preflight handling; the
//     API is consumed by arbitrary web dashboards.
//   - [Guard] — optional HS256 bearer-token check for deployments that do
//     not want the API wide open. The gateway ships with it disabled.
//
// # Architecture boundaries
//
// This package translates HTTP semantics only. It does NOT touch the session
// registry or the messaging client.
//
// # What this package must NOT do
//
//   - Issue tokens (deployments mint their own; Guard only verifies).
//   - Inspect request bodies.
package middleware
