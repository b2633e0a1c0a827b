// Package httpapi is the thin REST translation layer over the gateway
// engine. Handlers decode JSON, call one Engine method, and map sentinel
// errors onto the HTTP taxonomy:
//
//	validation failure -> 400
//	unknown session    -> 404
//	not authenticated  -> 400
//	rate limited       -> 429
//	upstream failure   -> 500 with the client's detail surfaced
//
// No state lives here; every read and write goes through the engine.
package httpapi
