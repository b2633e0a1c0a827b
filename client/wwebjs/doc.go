// Package wwebjs implements the messaging client contract over a WebSocket
// connection to a browser-automation sidecar. The sidecar owns the headless
// browser, the authentication handshake, and the message transport; this
// package is pure plumbing.
//
// # Wire format
//
// One JSON envelope per WebSocket message, both directions:
//
//	sidecar -> gateway: {"type":"event","event":"qr","code":"..."}
//	                    {"type":"event","event":"ready"}
//	                    {"type":"event","event":"authenticated"}
//	                    {"type":"event","event":"disconnected","reason":"..."}
//	                    {"type":"result","id":"<correlation>","ok":true}
//	                    {"type":"result","id":"<correlation>","ok":false,"error":"..."}
//	gateway -> sidecar: {"action":"init"}
//	                    {"action":"send","id":"<correlation>","to":"...","body":"..."}
//	                    {"action":"logout","id":"<correlation>"}
//	                    {"action":"destroy"}
//
// Send and logout are request/response, correlated by id; init and destroy
// are fire-and-forget. Events are unsolicited and forwarded to the bound
// sink in arrival order.
//
// # What this package must NOT do
//
//   - Interpret scan codes, session state, or recipient addresses.
//   - Retry or re-dial; a dropped connection surfaces as a disconnected
//     event and the session dies with it.
package wwebjs
